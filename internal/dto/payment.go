package dto

type PaymentCallbackRequestDTO struct {
	Reference string `json:"reference" validate:"required" example:"f8a6cb23-1b9f-4a58-a0c2-3d7e90b11a42"`
}

type PaymentCallbackResponseDTO struct {
	Reference string `json:"reference" example:"f8a6cb23-1b9f-4a58-a0c2-3d7e90b11a42"`
	Status    string `json:"status" example:"completed"`
}
