package domain

// Status is a health category derived solely from BMI.
type Status string

const (
	StatusWeightNotSpecified Status = "weight not specified"
	StatusSevereUnderweight  Status = "severe underweight"
	StatusUnderweight        Status = "underweight"
	StatusNormalWeight       Status = "normal weight"
	StatusOverweight         Status = "overweight"
	StatusObesity1           Status = "obesity class 1"
	StatusObesity2           Status = "obesity class 2"
	StatusObesity3           Status = "obesity class 3"
)

// ComputeBMI expects height in centimeters and weight in kilograms.
func ComputeBMI(heightCm, weightKg float64) float64 {
	h := heightCm / 100.0
	return weightKg / (h * h)
}

// StatusOf maps a BMI value to its health status. Upper bounds are
// inclusive; the first matching rule wins.
func StatusOf(bmi float64) Status {
	switch {
	case bmi == 0.0:
		return StatusWeightNotSpecified
	case bmi <= 16.0:
		return StatusSevereUnderweight
	case bmi <= 18.5:
		return StatusUnderweight
	case bmi <= 25.0:
		return StatusNormalWeight
	case bmi <= 30.0:
		return StatusOverweight
	case bmi <= 35.0:
		return StatusObesity1
	case bmi <= 40.0:
		return StatusObesity2
	default:
		return StatusObesity3
	}
}
