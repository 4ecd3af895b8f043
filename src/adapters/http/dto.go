package http

type ErrorResponseDTO struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

type GenerateTreeResponseDTO struct {
	Created int64 `json:"created"`
}

type HealthResponseDTO struct {
	Status string `json:"status"`
}
