package queue

const (
	TypeImageGenerate    = "image:generate"
	TypeBackgroundRemove = "background:remove"
)

type ImageGeneratePayload struct {
	GenerationID string `json:"generation_id"`
	SessionID    string `json:"session_id,omitempty"`
	Prompt       string `json:"prompt"`
	Provider     string `json:"provider,omitempty"`
	NumResults   int    `json:"num_results,omitempty"`
	CallbackURL  string `json:"callback_url,omitempty"`
}

type BackgroundRemovePayload struct {
	ImageURL          string `json:"image_url"`
	ContentModeration bool   `json:"content_moderation,omitempty"`
	CallbackURL       string `json:"callback_url"`
}
