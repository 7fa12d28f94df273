package cache

const keyPrefix = "receitaws:cnpj:"

// Key generates the Redis key for a normalized CNPJ.
//
// Example:
//
//	receitaws:cnpj:11222333000181
func Key(cnpj string) string {
	return keyPrefix + cnpj
}
