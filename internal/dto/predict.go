package dto

// PredictRequest carries the bioleaching process parameters. Pointers let the
// validator tell a missing field from a zero value.
type PredictRequest struct {
	C1R1        *float64 `json:"C1R1" validate:"required"`
	C1G1        *float64 `json:"C1G1" validate:"required"`
	C1B1        *float64 `json:"C1B1" validate:"required"`
	PH1         *float64 `json:"PH1" validate:"required"`
	FePlus2     *float64 `json:"Fe_plus2" validate:"required"`
	FePlus3     *float64 `json:"Fe_plus3" validate:"required"`
	AcidConc    *float64 `json:"acid_conc" validate:"required"`
	PulpDensity *float64 `json:"pulp_density" validate:"required"`
	Temp        *float64 `json:"temp" validate:"required"`
	Time        *float64 `json:"time" validate:"required"`
}

// Features returns the inputs in model column order. Call only after validation.
func (r PredictRequest) Features() []float64 {
	return []float64{
		*r.C1R1, *r.C1G1, *r.C1B1, *r.PH1,
		*r.FePlus2, *r.FePlus3, *r.AcidConc,
		*r.PulpDensity, *r.Temp, *r.Time,
	}
}

// PredictResponse is the predicted copper recovery.
type PredictResponse struct {
	CopperRecovery float64 `json:"Copper_Recovery"`
}

// MessageResponse is a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}
