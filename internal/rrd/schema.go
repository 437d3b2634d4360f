package rrd

// StepSize is the base step of every migrated RRD file, in seconds.
const StepSize = 60

// Kind identifies which RRD schema a file belongs to.
type Kind string

const (
	// KindNode is the per-node metrics schema
	KindNode Kind = "node"
	// KindGuest is the per-guest (VM/CT) metrics schema
	KindGuest Kind = "guest"
	// KindStorage is the per-storage metrics schema
	KindStorage Kind = "storage"
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// RRAs are defined as RRA:CF:xff:steps:rows.
//
// CF is AVERAGE or MAX, xff is 0.5, and steps counts base steps of 60s, so
// steps * 60 * rows is the time span covered by one archive:
//
//	1 step  * 1440 rows => 1 day at minute resolution
//	30 steps * 1440 rows => 30 days at half-hour resolution
//	360 steps * 1440 rows => ~1 year at 6-hour resolution
//	10080 steps * 570 rows => ~10 years at 1-week resolution
//
// https://oss.oetiker.ch/rrdtool/tut/rrd-beginners.en.html#Understanding_by_an_example
var archives = []string{
	"RRA:AVERAGE:0.5:1:1440",
	"RRA:AVERAGE:0.5:30:1440",
	"RRA:AVERAGE:0.5:360:1440",
	"RRA:AVERAGE:0.5:10080:570",
	"RRA:MAX:0.5:1:1440",
	"RRA:MAX:0.5:30:1440",
	"RRA:MAX:0.5:360:1440",
	"RRA:MAX:0.5:10080:570",
}

var guestDataSources = []string{
	"DS:maxcpu:GAUGE:120:0:U",
	"DS:cpu:GAUGE:120:0:U",
	"DS:maxmem:GAUGE:120:0:U",
	"DS:mem:GAUGE:120:0:U",
	"DS:maxdisk:GAUGE:120:0:U",
	"DS:disk:GAUGE:120:0:U",
	"DS:netin:DERIVE:120:0:U",
	"DS:netout:DERIVE:120:0:U",
	"DS:diskread:DERIVE:120:0:U",
	"DS:diskwrite:DERIVE:120:0:U",
	"DS:memhost:GAUGE:120:0:U",
	"DS:pressurecpusome:GAUGE:120:0:U",
	"DS:pressurecpufull:GAUGE:120:0:U",
	"DS:pressureiosome:GAUGE:120:0:U",
	"DS:pressureiofull:GAUGE:120:0:U",
	"DS:pressurememorysome:GAUGE:120:0:U",
	"DS:pressurememoryfull:GAUGE:120:0:U",
}

var nodeDataSources = []string{
	"DS:loadavg:GAUGE:120:0:U",
	"DS:maxcpu:GAUGE:120:0:U",
	"DS:cpu:GAUGE:120:0:U",
	"DS:iowait:GAUGE:120:0:U",
	"DS:memtotal:GAUGE:120:0:U",
	"DS:memused:GAUGE:120:0:U",
	"DS:swaptotal:GAUGE:120:0:U",
	"DS:swapused:GAUGE:120:0:U",
	"DS:roottotal:GAUGE:120:0:U",
	"DS:rootused:GAUGE:120:0:U",
	"DS:netin:DERIVE:120:0:U",
	"DS:netout:DERIVE:120:0:U",
	"DS:memfree:GAUGE:120:0:U",
	"DS:arcsize:GAUGE:120:0:U",
	"DS:pressurecpusome:GAUGE:120:0:U",
	"DS:pressureiosome:GAUGE:120:0:U",
	"DS:pressureiofull:GAUGE:120:0:U",
	"DS:pressurememorysome:GAUGE:120:0:U",
	"DS:pressurememoryfull:GAUGE:120:0:U",
}

var storageDataSources = []string{
	"DS:total:GAUGE:120:0:U",
	"DS:used:GAUGE:120:0:U",
}

// Definition returns the full DS and RRA argument list for the given kind,
// in the order rrdtool expects them. The returned slice is a copy.
func Definition(kind Kind) []string {
	var ds []string
	switch kind {
	case KindNode:
		ds = nodeDataSources
	case KindGuest:
		ds = guestDataSources
	case KindStorage:
		ds = storageDataSources
	default:
		return nil
	}

	def := make([]string, 0, len(ds)+len(archives))
	def = append(def, ds...)
	def = append(def, archives...)
	return def
}
