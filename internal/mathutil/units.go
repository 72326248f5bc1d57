package mathutil

// Unit conversions between the field units used across the system and SI.

const (
	psiPerKPa       = 0.1450377377
	milesPerKm      = 0.6213711922
	inchesPerMm     = 1.0 / 25.4
	mmscfdPerMcmd   = 0.0353146667 // thousand m3/day -> MMscfd
	rankinePerKelvin = 1.8
)

// KPaToPsia converts kilopascals (absolute) to psia.
func KPaToPsia(kpa float64) float64 { return kpa * psiPerKPa }

// PsiaToKPa converts psia to kilopascals (absolute).
func PsiaToKPa(psia float64) float64 { return psia / psiPerKPa }

// KmToMiles converts kilometres to miles.
func KmToMiles(km float64) float64 { return km * milesPerKm }

// MilesToKm converts miles to kilometres.
func MilesToKm(mi float64) float64 { return mi / milesPerKm }

// MmToInches converts millimetres to inches.
func MmToInches(mm float64) float64 { return mm * inchesPerMm }

// InchesToMm converts inches to millimetres.
func InchesToMm(in float64) float64 { return in / inchesPerMm }

// McmdToMMscfd converts thousand cubic metres per day to MMscfd.
func McmdToMMscfd(mcmd float64) float64 { return mcmd * mmscfdPerMcmd }

// MMscfdToMcmd converts MMscfd to thousand cubic metres per day.
func MMscfdToMcmd(mmscfd float64) float64 { return mmscfd / mmscfdPerMcmd }

// KelvinToRankine converts kelvin to degrees Rankine.
func KelvinToRankine(k float64) float64 { return k * rankinePerKelvin }

// RankineToKelvin converts degrees Rankine to kelvin.
func RankineToKelvin(r float64) float64 { return r / rankinePerKelvin }
