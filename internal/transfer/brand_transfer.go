package transfer

type BrandCreation struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
