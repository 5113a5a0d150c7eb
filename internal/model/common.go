package model

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Status string `json:"status"`
}
