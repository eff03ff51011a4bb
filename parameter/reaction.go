package parameter

// Reaction identifies a fusion channel in the constants table
type Reaction uint8

const (
	ReactionNone Reaction = iota
	ReactionDT            // D + T -> He4 + n
	ReactionDD            // D + D -> He3 + n
	ReactionDHe3          // D + He3 -> He4 + p
)

// String returns the conventional channel label
func (r Reaction) String() string {
	switch r {
	case ReactionDT:
		return "DT"
	case ReactionDD:
		return "DD"
	case ReactionDHe3:
		return "DHe3"
	default:
		return "none"
	}
}

// ReactionParams holds the static cross-section and yield data for one channel
type ReactionParams struct {
	// PeakEnergyKeV is the collision energy of maximum cross-section
	PeakEnergyKeV float64
	// MaxCrossSection is the cross-section at the peak, in barns
	MaxCrossSection float64
	// GamowEnergyKeV sets the Coulomb tunnelling suppression exp(-sqrt(Eg/E))
	GamowEnergyKeV float64
	// YieldMeV is the energy released per reaction
	YieldMeV float64
	// LawsonTriple is the ignition triple product n*T*tau (keV*s/m^3)
	LawsonTriple float64
	// FlashRadius and FlashOpacity size the visual marker emitted on fusion
	FlashRadius  float64
	FlashOpacity float64
}

// Channel constants
const (
	DTPeakEnergyKeV     = 64.0
	DTCrossSectionMax   = 5.0
	DTGamowEnergyKeV    = 1183.0
	DTYieldMeV          = 17.6
	DTLawsonTriple      = 3e21
	DDPeakEnergyKeV     = 1250.0
	DDCrossSectionMax   = 0.11
	DDGamowEnergyKeV    = 986.0
	DDYieldMeV          = 3.27
	DDLawsonTriple      = 1e23
	DHe3PeakEnergyKeV   = 250.0
	DHe3CrossSectionMax = 0.9
	DHe3GamowEnergyKeV  = 4681.0
	DHe3YieldMeV        = 18.3
	DHe3LawsonTriple    = 5e22
)

var reactionTable = [...]ReactionParams{
	ReactionNone: {},
	ReactionDT: {
		PeakEnergyKeV:   DTPeakEnergyKeV,
		MaxCrossSection: DTCrossSectionMax,
		GamowEnergyKeV:  DTGamowEnergyKeV,
		YieldMeV:        DTYieldMeV,
		LawsonTriple:    DTLawsonTriple,
		FlashRadius:     20,
		FlashOpacity:    1.0,
	},
	ReactionDD: {
		PeakEnergyKeV:   DDPeakEnergyKeV,
		MaxCrossSection: DDCrossSectionMax,
		GamowEnergyKeV:  DDGamowEnergyKeV,
		YieldMeV:        DDYieldMeV,
		LawsonTriple:    DDLawsonTriple,
		FlashRadius:     12,
		FlashOpacity:    0.7,
	},
	ReactionDHe3: {
		PeakEnergyKeV:   DHe3PeakEnergyKeV,
		MaxCrossSection: DHe3CrossSectionMax,
		GamowEnergyKeV:  DHe3GamowEnergyKeV,
		YieldMeV:        DHe3YieldMeV,
		LawsonTriple:    DHe3LawsonTriple,
		FlashRadius:     25,
		FlashOpacity:    1.0,
	},
}

// Params returns the table row for r, zero value for unknown channels
func Params(r Reaction) ReactionParams {
	if int(r) >= len(reactionTable) {
		return ReactionParams{}
	}
	return reactionTable[r]
}

// MarshalText renders the channel label
func (r Reaction) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a channel label; unknown labels map to ReactionNone
func (r *Reaction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "DT":
		*r = ReactionDT
	case "DD":
		*r = ReactionDD
	case "DHe3":
		*r = ReactionDHe3
	default:
		*r = ReactionNone
	}
	return nil
}
