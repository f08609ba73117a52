package models

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role" validate:"required,oneof=user assistant"`
	Content string   `json:"content" validate:"required"`
}

type ChatRequest struct {
	Message             string        `json:"message" validate:"required,max=2000"`
	ConversationHistory []ChatMessage `json:"conversationHistory" validate:"omitempty,dive"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

type TryOnRequest struct {
	UserPhoto       []byte `json:"-"`
	GarmentImageURL string `json:"garmentImage" validate:"required,url"`
}

type TryOnResponse struct {
	ResultImage string `json:"resultImage"`
}
