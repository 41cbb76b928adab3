package wizard

import (
	"fmt"
	"strconv"

	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// Event is an input to the state machine.
type Event interface{ isEvent() }

type (
	PickEmotion struct{ Emotion mood.Emotion }
	// InferenceCompleted delivers a classification for the Predict step.
	InferenceCompleted struct{ Result inference.Result }
	// AdvanceToWeather leaves Predict with the device geolocation outcome.
	AdvanceToWeather struct{ Fix weather.GeoFix }
	WeatherDetected  struct {
		Epoch  uint64
		Report weather.Report
	}
	WeatherFailed struct {
		Epoch  uint64
		Notice string
	}
	PickWeather    struct{ Condition weather.Condition }
	ConfirmWeather struct{}
	PickGender     struct{ Gender recommendation.Gender }
	Restart        struct{}
	ResetCapture   struct{}
)

func (PickEmotion) isEvent()        {}
func (InferenceCompleted) isEvent() {}
func (AdvanceToWeather) isEvent()   {}
func (WeatherDetected) isEvent()    {}
func (WeatherFailed) isEvent()      {}
func (PickWeather) isEvent()        {}
func (ConfirmWeather) isEvent()     {}
func (PickGender) isEvent()         {}
func (Restart) isEvent()            {}
func (ResetCapture) isEvent()       {}

// Effect is a side effect the controller performs after a transition.
type Effect interface{ isEffect() }

type (
	StopCamera             struct{}
	ClearCapture           struct{}
	StartWeatherDetection  struct {
		Epoch uint64
		Fix   weather.GeoFix
	}
	CancelWeatherDetection struct{}
	LinkHero               struct{}
)

func (StopCamera) isEffect()             {}
func (ClearCapture) isEffect()           {}
func (StartWeatherDetection) isEffect()  {}
func (CancelWeatherDetection) isEffect() {}
func (LinkHero) isEffect()               {}

// LatePolicy decides what a detection arriving after the user left the Weather step does.
type LatePolicy string

const (
	// LateIgnore cancels and drops detections once the Weather step is left.
	LateIgnore LatePolicy = "ignore"
	// LateOverwrite lets a late detection replace the weather selection without moving the step.
	LateOverwrite LatePolicy = "overwrite"
)

// Resolver is the pure recommendation lookup.
type Resolver interface {
	Resolve(style mood.Style, cond weather.Condition, gender recommendation.Gender) (recommendation.View, error)
}

const (
	okRunning        = "System is running normally."
	detectingWeather = "Detecting your current weather..."
)

// Machine holds the pure transition function.
type Machine struct {
	resolver Resolver
	policy   LatePolicy
}

// NewMachine builds a machine. Unknown policies fall back to LateIgnore.
func NewMachine(resolver Resolver, policy LatePolicy) Machine {
	if policy != LateOverwrite {
		policy = LateIgnore
	}
	return Machine{resolver: resolver, policy: policy}
}

// Apply computes the next session and the effects to run. A refused event returns the
// input session unchanged together with a transition_refused error carrying the advisory.
func (m Machine) Apply(s Session, ev Event) (Session, []Effect, error) {
	switch e := ev.(type) {
	case PickEmotion:
		return m.pickEmotion(s, e)
	case InferenceCompleted:
		return m.inferenceCompleted(s, e)
	case AdvanceToWeather:
		return m.advanceToWeather(s, e)
	case WeatherDetected:
		return m.weatherDetected(s, e)
	case WeatherFailed:
		return m.weatherFailed(s, e)
	case PickWeather:
		return m.pickWeather(s, e)
	case ConfirmWeather:
		return m.confirmWeather(s)
	case PickGender:
		return m.pickGender(s, e)
	case Restart:
		return m.restart(s)
	case ResetCapture:
		return m.resetCapture(s)
	default:
		return s, nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unsupported event %T", ev), nil)
	}
}

func refuse(s Session, notice string) (Session, []Effect, error) {
	return s, nil, apperrors.Wrap(apperrors.CodeTransitionRefused, notice, nil)
}

func (m Machine) pickEmotion(s Session, e PickEmotion) (Session, []Effect, error) {
	if s.Step != StepPredict {
		return refuse(s, "Emotion can only be chosen in the first step.")
	}
	style, ok := mood.StyleFor(e.Emotion)
	if !ok {
		return s, nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown emotion %q", e.Emotion), nil)
	}
	s.Emotion = e.Emotion
	s.Style = style
	s.Notice = emotionNotice(e.Emotion, style)
	return s, nil, nil
}

func (m Machine) inferenceCompleted(s Session, e InferenceCompleted) (Session, []Effect, error) {
	if s.Step != StepPredict {
		// Stale capture finishing after the user moved on.
		return s, nil, nil
	}
	res := e.Result
	s.Inference = &res
	s.Guidance = res.Guidance
	s.Banner = Banner{Kind: BannerOK, Text: okRunning}
	if res.Recognized {
		if style, ok := mood.StyleFor(res.Emotion); ok {
			s.Emotion = res.Emotion
			s.Style = style
			s.Notice = emotionNotice(res.Emotion, style)
		}
	}
	return s, nil, nil
}

func (m Machine) advanceToWeather(s Session, e AdvanceToWeather) (Session, []Effect, error) {
	if s.Step != StepPredict {
		return refuse(s, "The weather step has already been reached.")
	}
	if s.Style == "" {
		return refuse(s, "Select emotion first.")
	}
	s.Step = StepWeather
	s.WeatherEpoch++
	s.WeatherReport = nil
	s.WeatherNotice = detectingWeather
	s.Notice = ""
	return s, []Effect{
		StopCamera{},
		StartWeatherDetection{Epoch: s.WeatherEpoch, Fix: e.Fix},
	}, nil
}

func (m Machine) weatherDetected(s Session, e WeatherDetected) (Session, []Effect, error) {
	current := s.Step == StepWeather && e.Epoch == s.WeatherEpoch
	if !current && m.policy == LateIgnore {
		return s, nil, nil
	}
	s.Weather = e.Report.Weather.Condition
	if current {
		report := e.Report
		s.WeatherReport = &report
		s.WeatherNotice = weatherSummary(report)
	}
	return s, nil, nil
}

func (m Machine) weatherFailed(s Session, e WeatherFailed) (Session, []Effect, error) {
	if s.Step != StepWeather || e.Epoch != s.WeatherEpoch {
		return s, nil, nil
	}
	s.WeatherNotice = e.Notice
	return s, nil, nil
}

func (m Machine) pickWeather(s Session, e PickWeather) (Session, []Effect, error) {
	if s.Step != StepWeather {
		return refuse(s, "Weather can only be chosen in the weather step.")
	}
	switch e.Condition {
	case weather.Sunny, weather.Cloudy, weather.Rainy:
	default:
		return s, nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown weather %q", e.Condition), nil)
	}
	s.Weather = e.Condition
	s.Step = StepGender
	return s, m.leaveWeather(), nil
}

func (m Machine) confirmWeather(s Session) (Session, []Effect, error) {
	if s.Step != StepWeather {
		return refuse(s, "Weather can only be chosen in the weather step.")
	}
	if s.Weather == "" {
		return refuse(s, "Weather not detected. Choose the weather manually.")
	}
	s.Step = StepGender
	return s, m.leaveWeather(), nil
}

func (m Machine) leaveWeather() []Effect {
	if m.policy == LateIgnore {
		return []Effect{CancelWeatherDetection{}}
	}
	return nil
}

func (m Machine) pickGender(s Session, e PickGender) (Session, []Effect, error) {
	if s.Step != StepGender {
		return refuse(s, "Gender can only be chosen in the gender step.")
	}
	if e.Gender != recommendation.Male && e.Gender != recommendation.Female {
		return s, nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown gender %q", e.Gender), nil)
	}
	if s.Style == "" || s.Weather == "" {
		return refuse(s, "Missing weather, emotion, or gender.")
	}

	view, err := m.resolver.Resolve(s.Style, s.Weather, e.Gender)
	if err != nil && !apperrors.IsCode(err, apperrors.CodeRecommendationNotFound) {
		return s, nil, err
	}
	s.Gender = e.Gender
	if err != nil {
		// No card: stay on the gender step with an empty result.
		s.Recommendation = nil
		s.Notice = apperrors.MessageOf(err)
		return s, nil, nil
	}
	s.Step = StepFinal
	s.Recommendation = &view
	s.Notice = ""
	return s, []Effect{LinkHero{}}, nil
}

func (m Machine) restart(s Session) (Session, []Effect, error) {
	next := NewSession()
	next.WeatherEpoch = s.WeatherEpoch
	next.Banner = Banner{Kind: BannerOK, Text: "Restarting..."}
	effects := []Effect{StopCamera{}, ClearCapture{}}
	if m.policy == LateIgnore {
		effects = append(effects, CancelWeatherDetection{})
	}
	return next, effects, nil
}

func (m Machine) resetCapture(s Session) (Session, []Effect, error) {
	s.Inference = nil
	s.Guidance = ""
	s.Notice = "Reset complete."
	return s, []Effect{StopCamera{}, ClearCapture{}}, nil
}

func emotionNotice(e mood.Emotion, style mood.Style) string {
	return fmt.Sprintf("Emotion: %s → Style: %s", e, style)
}

func weatherSummary(r weather.Report) string {
	aq := r.AirQuality
	return fmt.Sprintf("Weather: %s, Temperature: %s°C, PM10: %s µg/m³ (%s), PM2.5: %s µg/m³ (%s). %s",
		r.Weather.Condition,
		strconv.FormatFloat(r.Weather.TemperatureC, 'f', -1, 64),
		strconv.FormatFloat(aq.PM10, 'f', -1, 64), aq.PM10Grade.Label,
		strconv.FormatFloat(aq.PM25, 'f', -1, 64), aq.PM25Grade.Label,
		r.Advisory,
	)
}
