package mode

// RunMode tags one experiment variant. It is resolved once at run start and
// every output file of the run carries its tag.
type RunMode int

const (
	Baseline RunMode = iota
	Multipath
	XCP
	CDG
)

func (m RunMode) String() string {
	switch m {
	case Multipath:
		return "multipath"
	case XCP:
		return "xcp"
	case CDG:
		return "cdg"
	default:
		return "baseline"
	}
}

// Select derives the run mode from the three experiment inputs.
//
// Precedence: multipath (without xcp), then xcp, then the cdg congestion
// control, else baseline. When both multipath and xcp are set, xcp wins;
// this matches the order the flags were historically checked in and is kept
// as-is rather than re-derived.
func Select(multipath, xcp bool, cong string) RunMode {
	switch {
	case multipath && !xcp:
		return Multipath
	case xcp:
		return XCP
	case cong == "cdg":
		return CDG
	default:
		return Baseline
	}
}
