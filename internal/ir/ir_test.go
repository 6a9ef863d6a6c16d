package ir

import "testing"

func TestTypeKey(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{NewPrimitive(PrimInt), "int"},
		{NewArray(NewPrimitive(PrimString)), "string[]"},
		{Type{Kind: TypePrimitive, Name: PrimDouble, Nullable: true}, "double?"},
		{NewReference("List", NewPrimitive(PrimInt)), "List<int>"},
		{
			Type{Kind: TypeReference, Name: "List", Clr: &ClrRef{QualifiedType: "System.Collections.Generic.List`1"}, TypeArgs: []Type{NewPrimitive(PrimInt)}},
			"System.Collections.Generic.List`1<int>",
		},
		{
			Type{Kind: TypeObject, Members: []ObjectMember{{Name: "id", Type: NewPrimitive(PrimDouble)}}},
			"{id:double}",
		},
		{
			Type{Kind: TypeUnion, Variants: []Type{NewPrimitive(PrimString), NewPrimitive(PrimDouble)}},
			"string|double",
		},
	}
	for _, c := range cases {
		if got := c.typ.Key(); got != c.want {
			t.Fatalf("Key() = %q, want %q", got, c.want)
		}
	}
}

func TestSpecRequestKeyDedup(t *testing.T) {
	a := SpecRequest{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []Type{NewPrimitive(PrimDouble)}}
	b := SpecRequest{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []Type{NewPrimitive(PrimDouble)}}
	c := SpecRequest{DeclModule: "/src/lib.ts", DeclName: "id", TypeArgs: []Type{NewPrimitive(PrimString)}}
	if a.Key() != b.Key() {
		t.Fatal("identical requests must share a key")
	}
	if a.Key() == c.Key() {
		t.Fatal("distinct type args must not share a key")
	}
}

func TestSuffixFor(t *testing.T) {
	cases := []struct {
		args []Type
		want string
	}{
		{[]Type{NewPrimitive(PrimDouble)}, "double"},
		{[]Type{NewPrimitive(PrimString)}, "string"},
		{[]Type{NewArray(NewPrimitive(PrimInt))}, "intArray"},
		{
			[]Type{{Kind: TypeReference, Name: "User", Clr: &ClrRef{QualifiedType: "MyApp.Models.User"}}},
			"MyAppModelsUser",
		},
		{[]Type{NewPrimitive(PrimInt), NewPrimitive(PrimString)}, "int_string"},
		{[]Type{NewReference("Map", NewPrimitive(PrimString), NewPrimitive(PrimInt))}, "MapOfstringint"},
	}
	for _, c := range cases {
		if got := SuffixFor(c.args); got != c.want {
			t.Fatalf("SuffixFor(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestIsValueType(t *testing.T) {
	if !NewPrimitive(PrimInt).IsValueType() {
		t.Fatal("int should be a value type")
	}
	if NewPrimitive(PrimString).IsValueType() {
		t.Fatal("string should not be a value type")
	}
	if NewReference("User").IsValueType() {
		t.Fatal("references should not be value types")
	}
}

func TestStructuralConstraint(t *testing.T) {
	structural := TypeParamDecl{
		Name:       "T",
		Constraint: &Type{Kind: TypeObject, Members: []ObjectMember{{Name: "id", Type: NewPrimitive(PrimDouble)}}},
	}
	nominal := TypeParamDecl{Name: "T", Constraint: &Type{Kind: TypeReference, Name: "IComparable"}}
	free := TypeParamDecl{Name: "T"}

	if !structural.Structural() {
		t.Fatal("object-literal constraint should be structural")
	}
	if nominal.Structural() || free.Structural() {
		t.Fatal("reference or missing constraints are not structural")
	}
}
