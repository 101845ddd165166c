package command

// Intent is the classified purpose of an utterance.
type Intent int

const (
	Unrecognized Intent = iota
	Shutdown
	OpenFileOrFolder
	OpenApp
	CloseApp
	TextAIQuery
	VoiceTranscribe
	ImageToText
	ImageCaption
	CodeQuery
	WebsiteOpen
	FileScan
	TimeQuery
)

var intentNames = map[Intent]string{
	Unrecognized:     "unrecognized",
	Shutdown:         "shutdown",
	OpenFileOrFolder: "open_file_or_folder",
	OpenApp:          "open_app",
	CloseApp:         "close_app",
	TextAIQuery:      "text_ai_query",
	VoiceTranscribe:  "voice_transcribe",
	ImageToText:      "image_to_text",
	ImageCaption:     "image_caption",
	CodeQuery:        "code_query",
	WebsiteOpen:      "website_open",
	FileScan:         "file_scan",
	TimeQuery:        "time_query",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "unknown"
}
