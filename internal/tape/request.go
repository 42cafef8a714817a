package tape

// InteractionRequest is the structured, protocol-agnostic form of a
// request. Adapters translate wire-level requests (an HTTP call, an RPC
// invocation, a published message) into this shape before matching.
//
// No canonical ordering is imposed on Headers at construction time;
// ordering is normalized only while computing the fingerprint.
type InteractionRequest struct {
	// Protocol identifies the protocol family, e.g. "http", "grpc", "mqtt".
	Protocol string `json:"protocol" yaml:"protocol"`

	// Action is the action or method name, e.g. "GET", "ListUsers", "publish".
	Action string `json:"action" yaml:"action"`

	// Target is the addressed resource, e.g. a URL, service name, or topic.
	Target string `json:"target" yaml:"target"`

	// Headers carries request headers in wire order.
	Headers Pairs `json:"headers" yaml:"headers"`

	// Body is the raw request payload.
	Body []byte `json:"body" yaml:"body"`
}

// Fingerprint computes the stable matching key for the request.
// Equivalent to FingerprintOf(r).
func (r InteractionRequest) Fingerprint() (RequestFingerprint, error) {
	return FingerprintOf(r)
}
