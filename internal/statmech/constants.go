package statmech

// CODATA 2018 physical constants, SI.
const (
	Planck      = 6.62607015e-34  // J*s
	HBar        = 1.054571817e-34 // J*s
	Boltzmann   = 1.380649e-23    // J/K
	Avogadro    = 6.02214076e23   // 1/mol
	LightSpeed  = 2.99792458e8    // m/s
	GasConstant = 8.314462618     // J/(mol*K)

	// refPressure is the standard-state pressure defining the molar
	// volume in the translational partition function.
	refPressure = 1.0e5 // Pa
)
