package utils

// ResponseData is the envelope every JSON endpoint of the storefront API returns.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}
