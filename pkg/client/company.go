package client

import "strings"

// Company is the registry payload returned by ReceitaWS for one CNPJ.
// Field names follow the upstream JSON contract.
type Company struct {
	// Status is "OK" for resolved lookups and "ERROR" when the registry
	// rejects the query (unknown CNPJ, malformed identifier).
	Status string `json:"status"`

	// Message carries the upstream error description when Status is "ERROR".
	Message string `json:"message"`

	// Name is the registered company name (razão social).
	Name string `json:"nome"`

	// Situation is the registration status text (ATIVA, BAIXADA, ...).
	Situation string `json:"situacao"`

	// City and State locate the registered address.
	City  string `json:"municipio"`
	State string `json:"uf"`

	// Phone is the phone number on file with the registry.
	Phone string `json:"telefone"`

	// Partners is the QSA: the partner/ownership list.
	Partners []Partner `json:"qsa"`
}

// Partner is one entry of a company's QSA.
type Partner struct {
	// Name is the partner's name.
	Name string `json:"nome"`

	// Qualification is the partner's role code text (e.g. "Sócio-Administrador").
	Qualification string `json:"qual"`
}

// IsError reports whether the payload is a definitive upstream error answer.
// A nil Company counts as an error (lookup produced nothing).
func (c *Company) IsError() bool {
	return c == nil || strings.EqualFold(c.Status, "ERROR")
}
