// Package clrmeta defines the CLR metadata registry: a normalized
// description of CLR types and members (kind, sealedness, virtuality,
// parameter modifiers) loaded from metadata.json manifests and consulted
// during lowering and emission.
package clrmeta

import (
	"sort"
	"strings"
)

// TypeKind classifies a CLR type.
type TypeKind string

const (
	TypeClass     TypeKind = "class"
	TypeInterface TypeKind = "interface"
	TypeStruct    TypeKind = "struct"
	TypeEnum      TypeKind = "enum"
	TypeDelegate  TypeKind = "delegate"
)

// ParamModifier is a CLR parameter passing modifier.
type ParamModifier string

const (
	ModNone ParamModifier = "none"
	ModIn   ParamModifier = "in"
	ModOut  ParamModifier = "out"
	ModRef  ParamModifier = "ref"
)

// TypeMeta describes one CLR type.
type TypeMeta struct {
	// Qualified is the namespace-qualified CLR type name.
	Qualified string `json:"qualified"`
	Assembly  string `json:"assembly"`
	Kind      TypeKind `json:"kind"`
	IsSealed  bool     `json:"isSealed,omitempty"`

	// Members is keyed by normalised signature "Name(Type1,Type2)",
	// types written in CLR notation. Properties and fields use the bare
	// member name as their key.
	Members map[string]MemberMeta `json:"members,omitempty"`
}

// MemberMeta describes one CLR member.
type MemberMeta struct {
	Name       string `json:"name"`
	// Kind is "method", "property", "constructor" or "field".
	Kind       string `json:"kind"`
	IsStatic   bool   `json:"isStatic,omitempty"`
	IsVirtual  bool   `json:"isVirtual,omitempty"`
	IsAbstract bool   `json:"isAbstract,omitempty"`
	// ReturnType in CLR notation; empty for constructors and fields.
	ReturnType string `json:"returnType,omitempty"`
	// ParamModifiers aligns positionally with the signature's parameter
	// list.
	ParamModifiers []ParamModifier `json:"paramModifiers,omitempty"`
}

// Registry indexes CLR type metadata by qualified name.
type Registry struct {
	types map[string]*TypeMeta
}

// NewRegistry returns an empty metadata registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*TypeMeta)}
}

// TypeMetadata returns the metadata for a qualified CLR type name.
func (r *Registry) TypeMetadata(qualified string) (*TypeMeta, bool) {
	t, ok := r.types[qualified]
	return t, ok
}

// MemberMetadata returns the member for a normalised signature on a type.
func (r *Registry) MemberMetadata(qualifiedType, signature string) (MemberMeta, bool) {
	t, ok := r.types[qualifiedType]
	if !ok {
		return MemberMeta{}, false
	}
	m, ok := t.Members[signature]
	return m, ok
}

// MemberByName returns the first member whose name matches, regardless of
// signature. Used when overload resolution has already happened upstream
// and only flags are needed.
func (r *Registry) MemberByName(qualifiedType, name string) (MemberMeta, bool) {
	t, ok := r.types[qualifiedType]
	if !ok {
		return MemberMeta{}, false
	}
	// Sorted iteration keeps the answer deterministic across runs.
	sigs := make([]string, 0, len(t.Members))
	for sig := range t.Members {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	for _, sig := range sigs {
		if t.Members[sig].Name == name {
			return t.Members[sig], true
		}
	}
	return MemberMeta{}, false
}

// IsVirtual reports whether the member behind a signature is virtual or
// abstract on the given type.
func (r *Registry) IsVirtual(qualifiedType, signature string) bool {
	m, ok := r.MemberMetadata(qualifiedType, signature)
	return ok && (m.IsVirtual || m.IsAbstract)
}

// IsSealedType reports whether the qualified type is sealed.
func (r *Registry) IsSealedType(qualified string) bool {
	t, ok := r.types[qualified]
	return ok && t.IsSealed
}

// HasType reports whether the qualified type is declared at all. The
// binding registry cross-checks against this at load time.
func (r *Registry) HasType(qualified string) bool {
	_, ok := r.types[qualified]
	return ok
}

// HasMemberNamed reports whether any member with the given CLR name exists
// on the type.
func (r *Registry) HasMemberNamed(qualifiedType, name string) bool {
	_, ok := r.MemberByName(qualifiedType, name)
	return ok
}

// QualifiedNames returns all registered type names in sorted order.
func (r *Registry) QualifiedNames() []string {
	out := make([]string, 0, len(r.types))
	for q := range r.types {
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}

// Merge folds other into r and returns r. Cross-root conflicts keep the
// first declaration; intra-root conflicts were already reported at load
// time.
func (r *Registry) Merge(other *Registry) *Registry {
	for q, t := range other.types {
		if _, ok := r.types[q]; !ok {
			r.types[q] = t
		}
	}
	return r
}

// NormalizeSignature builds the canonical member key "Name(T1,T2)" from a
// member name and CLR parameter type names. Whitespace in parameter types
// is not significant.
func NormalizeSignature(name string, paramTypes []string) string {
	if len(paramTypes) == 0 {
		return name + "()"
	}
	cleaned := make([]string, len(paramTypes))
	for i, p := range paramTypes {
		cleaned[i] = strings.ReplaceAll(p, " ", "")
	}
	return name + "(" + strings.Join(cleaned, ",") + ")"
}
