package bot

// AttachmentKind identifies how an attachment should be re-sent.
type AttachmentKind string

const (
	AttachmentPhoto     AttachmentKind = "photo"
	AttachmentVideo     AttachmentKind = "video"
	AttachmentAnimation AttachmentKind = "animation"
	AttachmentDocument  AttachmentKind = "document"
	AttachmentAudio     AttachmentKind = "audio"
	AttachmentVoice     AttachmentKind = "voice"
)

// Attachment is a media file carried by an incoming message. FileID refers to
// the platform-side file; Data is filled only after a successful fetch.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	FileName string
	Data     []byte
}
