package transfer

type PostCreation struct {
	BrandID   int64    `json:"brand_id" validate:"required"`
	Title     string   `json:"title"`
	ShortText string   `json:"short_text"`
	LongText  string   `json:"long_text"`
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Body      string   `json:"body"`
}

type PostUpdate struct {
	PostID    int64    `json:"post_id" validate:"required"`
	Title     string   `json:"title"`
	ShortText string   `json:"short_text"`
	LongText  string   `json:"long_text"`
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Body      string   `json:"body"`
}

// GenerationResult is what the content-generation webhook replies with. The
// workflow sometimes wraps it in a single-element array; the webhook service
// unwraps that before decoding.
type GenerationResult struct {
	Title     string   `json:"title"`
	ShortText string   `json:"short_text"`
	LongText  string   `json:"long_text"`
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Image     string   `json:"image"`
}
