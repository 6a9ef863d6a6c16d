package diagnostic

// Code is a stable four-digit diagnostic identifier. Every distinct error
// condition has exactly one code; codes are never renumbered.
type Code int

// Resolution (1xxx).
const (
	CodeMissingExtension  Code = 1001
	CodeOutsideSourceRoot Code = 1002
	CodeCaseMismatch      Code = 1003
	CodeUnknownModule     Code = 1004
	CodeFileNotFound      Code = 1005
	CodeCircularImport    Code = 1006
)

// Types (2xxx).
const (
	CodeUnsupportedLiteralType Code = 2001
	CodeConditionalType        Code = 2002
	CodeContainerNameCollision Code = 2003
	CodeUnsupportedMappedType  Code = 2004
)

// Features (3xxx).
const (
	CodeExportStar        Code = 3001
	CodeDefaultExport     Code = 3002
	CodeDynamicImport     Code = 3003
	CodeDecorator         Code = 3005
	CodeNamespaceDecl     Code = 3006
	CodePromiseCombinator Code = 3007
)

// Emission (4xxx).
const (
	CodeUnlowerableExpression Code = 4001
	CodeUnlowerableStatement  Code = 4002
	CodeThrowNonException     Code = 4003
	CodeUnresolvedAtEmission  Code = 4004
)

// Build (5xxx).
const (
	CodeAnalysisCycle Code = 5001
)

// Language semantics (7xxx).
const (
	CodeSymbolIndexSignature   Code = 7203
	CodeImplementsNonMarker    Code = 7301
	CodeNullableGenericParam   Code = 7415
	CodeEmptyArrayNoAnnotation Code = 7417
	CodeResidualIntrinsic      Code = 7441
)

// Manifests (9xxx).
const (
	CodeManifestRead     Code = 9001
	CodeManifestSchema   Code = 9002
	CodeDuplicateBinding Code = 9003
	CodeBindingNoMeta    Code = 9004
)

var codeNames = map[Code]string{
	CodeMissingExtension:  "import-missing-extension",
	CodeOutsideSourceRoot: "import-outside-source-root",
	CodeCaseMismatch:      "import-case-mismatch",
	CodeUnknownModule:     "unknown-module",
	CodeFileNotFound:      "module-file-not-found",
	CodeCircularImport:    "circular-import",

	CodeUnsupportedLiteralType: "unsupported-literal-type",
	CodeConditionalType:        "conditional-type",
	CodeContainerNameCollision: "container-name-collision",
	CodeUnsupportedMappedType:  "unsupported-mapped-type",

	CodeExportStar:        "export-star",
	CodeDefaultExport:     "default-export",
	CodeDynamicImport:     "dynamic-import",
	CodeDecorator:         "decorator",
	CodeNamespaceDecl:     "namespace-declaration",
	CodePromiseCombinator: "promise-combinator",

	CodeUnlowerableExpression: "unlowerable-expression",
	CodeUnlowerableStatement:  "unlowerable-statement",
	CodeThrowNonException:     "throw-non-exception",
	CodeUnresolvedAtEmission:  "unresolved-symbol",

	CodeAnalysisCycle: "analysis-cycle",

	CodeSymbolIndexSignature:   "symbol-index-signature",
	CodeImplementsNonMarker:    "implements-non-marker-interface",
	CodeNullableGenericParam:   "nullable-unconstrained-generic",
	CodeEmptyArrayNoAnnotation: "empty-array-without-annotation",
	CodeResidualIntrinsic:      "residual-type-test-intrinsic",

	CodeManifestRead:     "manifest-read-failure",
	CodeManifestSchema:   "manifest-schema-error",
	CodeDuplicateBinding: "duplicate-binding",
	CodeBindingNoMeta:    "binding-without-metadata",
}

// CodeName returns the stable human-readable name for a code, or "" for an
// unknown code. The mapping is part of the public contract.
func CodeName(c Code) string {
	return codeNames[c]
}

// KnownCodes returns all registered codes in ascending order.
func KnownCodes() []Code {
	codes := make([]Code, 0, len(codeNames))
	for c := range codeNames {
		codes = append(codes, c)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j] < codes[j-1]; j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
	return codes
}
