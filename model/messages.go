package model

type StreamChunkMsg struct {
	Chunk string
}

type StreamDoneMsg struct {
	Result Result
}

type SendDoneMsg struct {
	Result Result
}

type ModelsListMsg struct {
	Slug   string
	Models []string
	Err    error
}

// SearchHit is one full-text match inside a stored chat.
type SearchHit struct {
	ChatID  int
	Index   int
	Role    string
	Preview string
}

type ClipboardReadMsg struct {
	Text string
	Err  error
}
