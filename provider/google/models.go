package google

// ChatModel represents a Google Gemini chat model.
type ChatModel string

const (
	Gemini25Pro       ChatModel = "gemini-2.5-pro"
	Gemini25Flash     ChatModel = "gemini-2.5-flash"
	Gemini25FlashLite ChatModel = "gemini-2.5-flash-lite"

	// DefaultChatModel is the model used when none is configured.
	DefaultChatModel ChatModel = Gemini25Flash
)

// String returns the model identifier.
func (m ChatModel) String() string {
	return string(m)
}
