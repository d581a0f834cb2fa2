package server

import "fmt"

// CredentialError reports that a request reached tool code without usable
// Box credentials. In pass-through mode this means the MCP client never
// presented a bearer token.
type CredentialError struct {
	Mode   string
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("no box credentials available (%s mode): %s", e.Mode, e.Reason)
}
