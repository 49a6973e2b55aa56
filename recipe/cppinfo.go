package recipe

// CppInfo is the consumer-visible description of the installed
// package: where its build-integration files live relative to the
// package root, the symbolic target a downstream build links against,
// and the produced library names. It is the only state this system
// persists for downstream recipes.
type CppInfo struct {
	BuildDirs  []string `json:"builddirs"`
	TargetName string   `json:"target_name"`
	Libs       []string `json:"libs"`
}
