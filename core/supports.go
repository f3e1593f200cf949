package core

// Verb names one optional provider capability.
type Verb int

const (
	VerbClaim Verb = iota
	VerbStat
	VerbLstat
	VerbAccess
	VerbOpen
	VerbMkdir
	VerbRemoveDir
	VerbDeleteFile
	VerbRename
	VerbCopyFile
	VerbCopyDir
	VerbListVolumes
	VerbMatch
	VerbListMounts
	VerbCanonicalize
	VerbPathType
	VerbGetwd
	VerbChdir
	VerbUtime
	VerbLink
	VerbAttrs
	VerbLoad
	VerbSeparator
	VerbCreateTemp
	VerbCreateRep
	VerbDupRep
	VerbFreeRep
	VerbRepPath
)

var verbNames = map[Verb]string{
	VerbClaim:        "claim",
	VerbStat:         "stat",
	VerbLstat:        "lstat",
	VerbAccess:       "access",
	VerbOpen:         "open",
	VerbMkdir:        "mkdir",
	VerbRemoveDir:    "rmdir",
	VerbDeleteFile:   "delete",
	VerbRename:       "rename",
	VerbCopyFile:     "copy",
	VerbCopyDir:      "copydir",
	VerbListVolumes:  "volumes",
	VerbMatch:        "match",
	VerbListMounts:   "mounts",
	VerbCanonicalize: "canonicalize",
	VerbPathType:     "pathtype",
	VerbGetwd:        "getwd",
	VerbChdir:        "chdir",
	VerbUtime:        "utime",
	VerbLink:         "link",
	VerbAttrs:        "attrs",
	VerbLoad:         "load",
	VerbSeparator:    "separator",
	VerbCreateTemp:   "createtemp",
	VerbCreateRep:    "createrep",
	VerbDupRep:       "duprep",
	VerbFreeRep:      "freerep",
	VerbRepPath:      "reppath",
}

// String returns the verb's short name.
func (v Verb) String() string {
	if name, ok := verbNames[v]; ok {
		return name
	}
	return "unknown"
}

// Supports reports whether p implements the interface behind verb.
//
//nolint:gocyclo,cyclop // one case per verb
func Supports(p Provider, verb Verb) bool {
	if p == nil {
		return false
	}
	var ok bool
	switch verb {
	case VerbClaim:
		_, ok = p.(Claimer)
	case VerbStat:
		_, ok = p.(Stater)
	case VerbLstat:
		_, ok = p.(Lstater)
	case VerbAccess:
		_, ok = p.(Accessor)
	case VerbOpen:
		_, ok = p.(Opener)
	case VerbMkdir:
		_, ok = p.(DirMaker)
	case VerbRemoveDir:
		_, ok = p.(DirRemover)
	case VerbDeleteFile:
		_, ok = p.(FileDeleter)
	case VerbRename:
		_, ok = p.(Renamer)
	case VerbCopyFile:
		_, ok = p.(Copier)
	case VerbCopyDir:
		_, ok = p.(DirCopier)
	case VerbListVolumes:
		_, ok = p.(VolumeLister)
	case VerbMatch:
		_, ok = p.(Matcher)
	case VerbListMounts:
		_, ok = p.(MountLister)
	case VerbCanonicalize:
		_, ok = p.(Canonicalizer)
	case VerbPathType:
		_, ok = p.(PathTyper)
	case VerbGetwd:
		_, ok = p.(CwdGetter)
	case VerbChdir:
		_, ok = p.(Chdirer)
	case VerbUtime:
		_, ok = p.(Utimer)
	case VerbLink:
		_, ok = p.(Linker)
	case VerbAttrs:
		_, ok = p.(AttrProvider)
	case VerbLoad:
		_, ok = p.(Loader)
	case VerbSeparator:
		_, ok = p.(Separatorer)
	case VerbCreateTemp:
		_, ok = p.(TempFiler)
	case VerbCreateRep:
		_, ok = p.(RepCreator)
	case VerbDupRep:
		_, ok = p.(RepDuper)
	case VerbFreeRep:
		_, ok = p.(RepFreer)
	case VerbRepPath:
		_, ok = p.(RepPather)
	}
	return ok
}

// SeparatorOf returns p's path separator, "/" by default.
func SeparatorOf(p Provider) string {
	if s, ok := p.(Separatorer); ok {
		if sep := s.Separator(); sep != "" {
			return sep
		}
	}
	return "/"
}
