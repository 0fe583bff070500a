package cache

// JSON protocol spoken between storefront processes and the cache daemon
// over a Unix domain socket. Each request is answered by exactly one
// response; a connection may carry any number of round trips.

const (
	OpGet    = "get"
	OpPut    = "put"
	OpDelete = "delete"
)

type Request struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

type Response struct {
	OK       bool   `json:"ok"`
	Value    []byte `json:"value,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
	Error    string `json:"error,omitempty"`
}
