package dto

// PageRequest paginación para listados (query string).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica def si Limit es cero o negativo, recorta a ceiling y lleva Offset a >= 0.
func (p *PageRequest) Normalize(def, ceiling int) {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > ceiling {
		p.Limit = ceiling
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
