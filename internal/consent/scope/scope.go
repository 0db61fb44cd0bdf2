// Package scope define el catálogo cerrado de scopes de consentimiento.
//
// Un scope es un identificador opaco y registrado (ej: "vault.read.email").
// Solo scopes presentes en el Registry pueden emitirse o validarse; la
// comparación es por igualdad exacta, sin prefijos ni wildcards.
package scope

import (
	"fmt"
	"regexp"
	"sort"
)

// Scope es un identificador de permiso registrado.
type Scope string

func (s Scope) String() string { return string(s) }

// Catálogo por defecto. Refleja los scopes que consumen los agentes
// colaboradores (quiz de valores, análisis de compras, supply chain).
const (
	VaultReadEmail        Scope = "vault.read.email"
	VaultReadFinance      Scope = "vault.read.finance"
	VaultWriteValues      Scope = "vault.write.values"
	AgentShoppingPurchase Scope = "agent.shopping.purchase"
	CustomEthicalValues   Scope = "custom.ethical.values"
	CustomSupplyChain     Scope = "custom.supply.chain"
)

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
//
// Examples valid: profile, vault.read.email, custom.ethical.values, a_b-c.d:x
// Examples invalid: ;hack, BAD, "bad space", .leader, trailer., "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidName returns true if the provided scope name matches the allowed pattern.
func ValidName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// Registry es el catálogo canónico de scopes. Inmutable después de construido;
// el set se puebla al arranque desde configuración, nunca dinámicamente.
type Registry struct {
	set   map[Scope]struct{}
	names []Scope
}

// NewRegistry construye un Registry desde la lista de nombres.
// Rechaza nombres con sintaxis inválida; duplicados se colapsan.
func NewRegistry(names []string) (*Registry, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("scope: catálogo vacío")
	}
	set := make(map[Scope]struct{}, len(names))
	for _, n := range names {
		if !ValidName(n) {
			return nil, fmt.Errorf("scope: nombre inválido %q", n)
		}
		set[Scope(n)] = struct{}{}
	}
	out := make([]Scope, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return &Registry{set: set, names: out}, nil
}

// Default retorna un Registry con el catálogo por defecto.
func Default() *Registry {
	r, err := NewRegistry([]string{
		string(VaultReadEmail),
		string(VaultReadFinance),
		string(VaultWriteValues),
		string(AgentShoppingPurchase),
		string(CustomEthicalValues),
		string(CustomSupplyChain),
	})
	if err != nil {
		// El catálogo por defecto es constante; si no compila contra la regla
		// de nombres es un bug de programación.
		panic(err)
	}
	return r
}

// IsRegistered verifica membresía exacta en el catálogo.
func (r *Registry) IsRegistered(s Scope) bool {
	_, ok := r.set[s]
	return ok
}

// List retorna los scopes registrados, ordenados. Copia defensiva.
func (r *Registry) List() []Scope {
	out := make([]Scope, len(r.names))
	copy(out, r.names)
	return out
}
