package view

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Page is the data passed to every customer-facing HTML page.
type Page struct {
	Title      string
	Notice     Notice
	Payment    *PublicPayment
	RequestID  string
	Status     int
	StatusText string
}
