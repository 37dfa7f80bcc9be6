package interval

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a single interval on a named sequence, with 0-based coordinates.
type Region struct {
	Seq string
	Interval
}

// ParseRegionString parses a region string of one of the forms
//
//	[sequence]:[1-based first pos]-[last pos]
//	[sequence]:[1-based pos]
//	[sequence]
//
// returning the sequence name and 0-based interval boundaries.  The interval
// [0, PosTypeMax) is returned if there is no positional restriction.
// Thousands separators (commas) are accepted in positions.
func ParseRegionString(region string) (result Region, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.Seq = region
		result.End = PosTypeMax
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty sequence name in %q", region)
		return
	}
	result.Seq = region[0:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 64); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1, end0 int64
	if start1, err = strconv.ParseInt(start1Str, 10, 64); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	if end0, err = strconv.ParseInt(endStr, 10, 64); err != nil {
		return
	}
	if end0 < start1 {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}
