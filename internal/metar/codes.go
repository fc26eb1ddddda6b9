package metar

import "fmt"

var reportTypes = map[string]string{
	"METAR": "routine report",
	"SPECI": "special report",
	"AUTO":  "automatic report",
	"COR":   "manually corrected report",
}

var skyCover = map[string]string{
	"SKC": "clear",
	"CLR": "clear",
	"NSC": "clear",
	"NCD": "clear",
	"FEW": "a few ",
	"SCT": "scattered ",
	"BKN": "broken ",
	"OVC": "overcast",
	"///": "",
	"VV":  "indefinite ceiling",
}

var cloudTypes = map[string]string{
	"AC":    "altocumulus",
	"ACC":   "altocumulus castellanus",
	"ACSL":  "standing lenticular altocumulus",
	"AS":    "altostratus",
	"CB":    "cumulonimbus",
	"CBMAM": "cumulonimbus mammatus",
	"CCSL":  "standing lenticular cirrocumulus",
	"CC":    "cirrocumulus",
	"CI":    "cirrus",
	"CS":    "cirrostratus",
	"CU":    "cumulus",
	"NS":    "nimbostratus",
	"SC":    "stratocumulus",
	"ST":    "stratus",
	"SCSL":  "standing lenticular stratocumulus",
	"TCU":   "towering cumulus",
}

var weatherIntensity = map[string]string{
	"-":   "light",
	"+":   "heavy",
	"-VC": "nearby light",
	"+VC": "nearby heavy",
	"VC":  "nearby",
}

var weatherDescriptor = map[string]string{
	"MI": "shallow",
	"PR": "partial",
	"BC": "patches of",
	"DR": "low drifting",
	"BL": "blowing",
	"SH": "showers",
	"TS": "thunderstorm",
	"FZ": "freezing",
}

var weatherPrecipitation = map[string]string{
	"DZ": "drizzle",
	"RA": "rain",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice crystals",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "snow pellets",
	"UP": "unknown precipitation",
}

var weatherObscuration = map[string]string{
	"BR": "mist",
	"FG": "fog",
	"FU": "smoke",
	"VA": "volcanic ash",
	"DU": "dust",
	"SA": "sand",
	"HZ": "haze",
	"PY": "spray",
}

var weatherOther = map[string]string{
	"PO":  "sand whirls",
	"SQ":  "squalls",
	"FC":  "funnel cloud",
	"SS":  "sandstorm",
	"DS":  "dust storm",
	"NSW": "no significant weather",
}

// weatherSpecial overrides the composed text for whole groups.
var weatherSpecial = map[string]string{
	"+FC": "tornado",
}

var colorCodes = map[string]string{
	"BLU": "blue",
	"GRN": "green",
	"WHT": "white",
	"YLO": "yellow",
	"AMB": "amber",
	"RED": "red",
}

var pressureTendency = map[string]string{
	"0": "increasing, then decreasing",
	"1": "increasing more slowly",
	"2": "increasing",
	"3": "increasing more quickly",
	"4": "steady",
	"5": "decreasing, then increasing",
	"6": "decreasing more slowly",
	"7": "decreasing",
	"8": "decreasing more quickly",
}

var lightningFrequency = map[string]string{
	"OCNL": "occasional",
	"FRQ":  "frequent",
	"CONS": "constant",
}

var lightningType = map[string]string{
	"IC": "intracloud",
	"CC": "cloud-to-cloud",
	"CG": "cloud-to-ground",
	"CA": "cloud-to-air",
}

var locationTerms = map[string]string{
	"OHD":  "overhead",
	"DSNT": "distant",
	"AND":  "and",
	"VC":   "nearby",
}

var runwayDeposit = map[string]string{
	"0": "clear and dry",
	"1": "damp",
	"2": "wet or water patches",
	"3": "rime or frost covered",
	"4": "dry snow",
	"5": "wet snow",
	"6": "slush",
	"7": "ice",
	"8": "compacted or rolled snow",
	"9": "frozen ruts or ridges",
	"/": "deposit not reported",
}

var runwayExtent = map[string]string{
	"1": "10% or less covered",
	"2": "11% to 25% covered",
	"5": "26% to 50% covered",
	"9": "51% to 100% covered",
	"/": "extent not reported",
}

// lookup returns table[code], or a flagged placeholder naming the table when
// the code is not listed.
func lookup(table map[string]string, kind, code string) string {
	if text, ok := table[code]; ok {
		return text
	}
	return fmt.Sprintf("[unknown %s %s]", kind, code)
}
