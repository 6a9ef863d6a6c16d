package emit

import (
	"sort"
	"strings"
)

// jsRuntimePackage is the NuGet package carrying the JS-semantics
// extension methods; referenced iff mode is js.
const jsRuntimePackage = "Tsonic.JsRuntime@1.0.0"

// projectManifest renders the .csproj for the emitted source set:
// NativeAOT publishing, trimming and invariant globalisation, package and
// framework references, and the explicit compile list in sorted order.
func projectManifest(in *Input, out *Output) string {
	w := NewWriter()
	w.Line("<Project Sdk=\"Microsoft.NET.Sdk\">")
	w.Indent()

	w.Line("<PropertyGroup>")
	w.Indent()
	w.Line("<OutputType>Exe</OutputType>")
	w.Line("<TargetFramework>%s</TargetFramework>", in.TargetFrameworkMoniker)
	w.Line("<AssemblyName>%s</AssemblyName>", in.OutputName)
	w.Line("<RootNamespace>%s</RootNamespace>", in.RootNamespace)
	w.Line("<Nullable>enable</Nullable>")
	w.Line("<ImplicitUsings>disable</ImplicitUsings>")
	w.Line("<PublishAot>true</PublishAot>")
	w.Line("<PublishTrimmed>true</PublishTrimmed>")
	w.Line("<InvariantGlobalization>true</InvariantGlobalization>")
	w.Line("<EnableDefaultCompileItems>false</EnableDefaultCompileItems>")
	w.Dedent()
	w.Line("</PropertyGroup>")

	packages := append([]string{}, in.PackageReferences...)
	if in.Mode == ModeJS {
		packages = append(packages, jsRuntimePackage)
	}
	if len(packages) > 0 {
		sort.Strings(packages)
		w.Line("<ItemGroup>")
		w.Indent()
		for _, p := range packages {
			name, version := splitPackageRef(p)
			w.Line("<PackageReference Include=\"%s\" Version=\"%s\" />", name, version)
		}
		w.Dedent()
		w.Line("</ItemGroup>")
	}

	if len(in.FrameworkReferences) > 0 {
		refs := append([]string{}, in.FrameworkReferences...)
		sort.Strings(refs)
		w.Line("<ItemGroup>")
		w.Indent()
		for _, r := range refs {
			w.Line("<FrameworkReference Include=\"%s\" />", r)
		}
		w.Dedent()
		w.Line("</ItemGroup>")
	}

	if len(in.LibraryReferences) > 0 {
		refs := append([]string{}, in.LibraryReferences...)
		sort.Strings(refs)
		w.Line("<ItemGroup>")
		w.Indent()
		for _, r := range refs {
			w.Line("<Reference Include=\"%s\" />", r)
		}
		w.Dedent()
		w.Line("</ItemGroup>")
	}

	files := make([]string, 0, len(out.Files))
	for f := range out.Files {
		files = append(files, f)
	}
	sort.Strings(files)
	w.Line("<ItemGroup>")
	w.Indent()
	for _, f := range files {
		w.Line("<Compile Include=\"%s\" />", strings.ReplaceAll(f, "/", "\\"))
	}
	w.Dedent()
	w.Line("</ItemGroup>")

	w.Dedent()
	w.Line("</Project>")
	return w.String()
}

// splitPackageRef splits "Name@Version"; config validation guarantees the
// separator exists.
func splitPackageRef(ref string) (string, string) {
	i := strings.LastIndex(ref, "@")
	if i < 0 {
		return ref, "*"
	}
	return ref[:i], ref[i+1:]
}
