package domain

// MockResponse es una respuesta enlatada del pool precargado.
type MockResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
