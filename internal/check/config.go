package check

// Config holds every threshold and numeric breakpoint of the check set.
// Values are tuned for realistic webcam passport photos rather than studio
// captures; each one can be overridden through the environment (see
// internal/config) or set directly before constructing the checks.
type Config struct {
	// Lighting: generous range for ordinary indoor light.
	BrightnessThreshold float64 `envconfig:"CHECK_BRIGHTNESS_THRESHOLD" default:"0.5"`
	BrightnessMin       float64 `envconfig:"CHECK_BRIGHTNESS_MIN" default:"50"`
	BrightnessMax       float64 `envconfig:"CHECK_BRIGHTNESS_MAX" default:"230"`

	// Sharpness: webcams are rarely tack sharp, keep the bar low.
	SharpnessThreshold   float64 `envconfig:"CHECK_SHARPNESS_THRESHOLD" default:"0.5"`
	SharpnessMinVariance float64 `envconfig:"CHECK_SHARPNESS_MIN_VARIANCE" default:"50"`

	// Face position and framing.
	FacePositionThreshold float64 `envconfig:"CHECK_FACE_POSITION_THRESHOLD" default:"0.5"`
	FaceCenterTolerance   float64 `envconfig:"CHECK_FACE_CENTER_TOLERANCE" default:"0.30"`
	FaceSizeMinRatio      float64 `envconfig:"CHECK_FACE_SIZE_MIN_RATIO" default:"0.05"`
	FaceSizeMaxRatio      float64 `envconfig:"CHECK_FACE_SIZE_MAX_RATIO" default:"0.70"`

	// Expression: a faint smile is fine, a wide-open mouth is not.
	ExpressionThreshold float64 `envconfig:"CHECK_EXPRESSION_THRESHOLD" default:"0.4"`
	MouthOpenMax        float64 `envconfig:"CHECK_MOUTH_OPEN_MAX" default:"0.5"`

	// Eye visibility breakpoints, calibrated against real capture data:
	// below EyeClosedAspect an eye is considered closed, above
	// EyeOpenAspect it is fully open, in between it scores linearly.
	EyeThreshold    float64 `envconfig:"CHECK_EYE_THRESHOLD" default:"0.4"`
	EyeClosedAspect float64 `envconfig:"CHECK_EYE_CLOSED_ASPECT" default:"0.22"`
	EyeOpenAspect   float64 `envconfig:"CHECK_EYE_OPEN_ASPECT" default:"0.25"`

	// Reflection: only genuinely blown-out highlights count.
	ReflectionThreshold  float64 `envconfig:"CHECK_REFLECTION_THRESHOLD" default:"0.5"`
	ReflectionBrightness float64 `envconfig:"CHECK_REFLECTION_BRIGHTNESS" default:"250"`
	ReflectionMaxRatio   float64 `envconfig:"CHECK_REFLECTION_MAX_RATIO" default:"0.12"`

	// Shadow: only genuinely dark regions count.
	ShadowThreshold float64 `envconfig:"CHECK_SHADOW_THRESHOLD" default:"0.5"`
	ShadowDarkness  float64 `envconfig:"CHECK_SHADOW_DARKNESS" default:"35"`
	ShadowMaxRatio  float64 `envconfig:"CHECK_SHADOW_MAX_RATIO" default:"0.20"`

	HeadwearThreshold   float64 `envconfig:"CHECK_HEADWEAR_THRESHOLD" default:"0.5"`
	BackgroundThreshold float64 `envconfig:"CHECK_BACKGROUND_THRESHOLD" default:"0.5"`
}

// DefaultConfig returns the stock configuration. The numbers here must stay
// in sync with the envconfig defaults above.
func DefaultConfig() Config {
	return Config{
		BrightnessThreshold:   0.5,
		BrightnessMin:         50,
		BrightnessMax:         230,
		SharpnessThreshold:    0.5,
		SharpnessMinVariance:  50,
		FacePositionThreshold: 0.5,
		FaceCenterTolerance:   0.30,
		FaceSizeMinRatio:      0.05,
		FaceSizeMaxRatio:      0.70,
		ExpressionThreshold:   0.4,
		MouthOpenMax:          0.5,
		EyeThreshold:          0.4,
		EyeClosedAspect:       0.22,
		EyeOpenAspect:         0.25,
		ReflectionThreshold:   0.5,
		ReflectionBrightness:  250,
		ReflectionMaxRatio:    0.12,
		ShadowThreshold:       0.5,
		ShadowDarkness:        35,
		ShadowMaxRatio:        0.20,
		HeadwearThreshold:     0.5,
		BackgroundThreshold:   0.5,
	}
}
