package distribution

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrUnknownDistribution is returned by New for a family name that is
	// not in the supported set.
	ErrUnknownDistribution = errors.New("unknown distribution")
	// ErrInvalidParams is returned by New when a family's parameters are
	// missing or outside its domain.
	ErrInvalidParams = errors.New("invalid distribution parameters")
)

// Kind is the closed set of supported distribution families.
type Kind int

const (
	RandRange Kind = iota + 1 // integer in [start, stop) on a step grid
	RandInt                   // integer in [a, b]
	Random                    // float in [0, 1)
	Uniform                   // float in [a, b]
	Triangular
	Beta
	Exponential
	Gamma
	Gauss
	LogNormal
	Normal
	VonMises
	Pareto
	Weibull
)

// kindNames are the configuration names of each family.
var kindNames = map[string]Kind{
	"randrange":  RandRange,
	"randint":    RandInt,
	"random":     Random,
	"uniform":    Uniform,
	"triangular": Triangular,
	"beta":       Beta,
	"expo":       Exponential,
	"gamma":      Gamma,
	"gauss":      Gauss,
	"lognorm":    LogNormal,
	"normal":     Normal,
	"vonmises":   VonMises,
	"pareto":     Pareto,
	"weibull":    Weibull,
}

// ParseKind maps a configuration name to its Kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindNames[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w %q; valid: %s", ErrUnknownDistribution, name, strings.Join(KindNames(), ", "))
}

// KindNames returns the sorted configuration names of all families.
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for n := range kindNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (k Kind) String() string {
	for n, v := range kindNames {
		if v == k {
			return n
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Spec parameterizes a distribution as it appears in configuration.
// Params are positional, in the order documented per family in New.
type Spec struct {
	Distribution string    `yaml:"distribution"`
	Params       []float64 `yaml:"params,omitempty"`
	DivideScale  float64   `yaml:"divide_scale,omitempty"`
}

// Sampler produces one variate per call. gonum's distuv types satisfy it.
type Sampler interface {
	Rand() float64
}

// Distributor wraps one family with parameters bound at construction.
// It is stateless apart from the random source it was built with.
type Distributor struct {
	name        string
	kind        Kind
	params      []float64
	divideScale float64
	sampler     Sampler
}

// New validates spec eagerly and binds it to rng. Parameters per family:
//
//	randrange  [start, stop] or [start, stop, step]
//	randint    [a, b]
//	random     []
//	uniform    [a, b]
//	triangular [low, high] or [low, high, mode]
//	beta       [alpha, beta]
//	expo       [lambda]
//	gamma      [shape, scale]
//	gauss      [mu, sigma]
//	lognorm    [mu, sigma]
//	normal     [mu, sigma]
//	vonmises   [mu, kappa]
//	pareto     [alpha]
//	weibull    [scale, shape]
func New(name string, spec Spec, rng *rand.Rand) (*Distributor, error) {
	kind, err := ParseKind(spec.Distribution)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for i, p := range spec.Params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%s: params[%d] must be a finite number, got %v: %w", name, i, p, ErrInvalidParams)
		}
	}
	scale := spec.DivideScale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%s: divide_scale must be positive, got %v: %w", name, spec.DivideScale, ErrInvalidParams)
	}
	s, err := newSampler(kind, spec.Params, rng)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, kind, err)
	}
	return &Distributor{
		name:        name,
		kind:        kind,
		params:      append([]float64(nil), spec.Params...),
		divideScale: scale,
		sampler:     s,
	}, nil
}

// Name returns the label the distributor was created with.
func (d *Distributor) Name() string { return d.name }

// Kind returns the wrapped family.
func (d *Distributor) Kind() Kind { return d.kind }

// Generate returns one variate.
func (d *Distributor) Generate() float64 {
	return d.sampler.Rand()
}

// GenerateScaled returns Generate() divided by the configured scale
// (1 when none was configured).
func (d *Distributor) GenerateScaled() float64 {
	return d.Generate() / d.divideScale
}

func (d *Distributor) String() string {
	return fmt.Sprintf("%s[%s%v]", d.name, d.kind, d.params)
}

func arity(params []float64, counts ...int) error {
	for _, c := range counts {
		if len(params) == c {
			return nil
		}
	}
	return fmt.Errorf("takes %v parameters, got %d: %w", counts, len(params), ErrInvalidParams)
}

func positive(what string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v: %w", what, v, ErrInvalidParams)
	}
	return nil
}

func nonNegative(what string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must be non-negative, got %v: %w", what, v, ErrInvalidParams)
	}
	return nil
}

func newSampler(kind Kind, p []float64, rng *rand.Rand) (Sampler, error) {
	switch kind {
	case RandRange:
		if err := arity(p, 2, 3); err != nil {
			return nil, err
		}
		step := 1.0
		if len(p) == 3 {
			step = p[2]
		}
		if p[0] != math.Trunc(p[0]) || p[1] != math.Trunc(p[1]) || step != math.Trunc(step) {
			return nil, fmt.Errorf("randrange bounds must be integers: %w", ErrInvalidParams)
		}
		if err := positive("step", step); err != nil {
			return nil, err
		}
		n := int64(math.Ceil((p[1] - p[0]) / step))
		if n <= 0 {
			return nil, fmt.Errorf("empty range [%v, %v): %w", p[0], p[1], ErrInvalidParams)
		}
		return &rangeSampler{start: int64(p[0]), step: int64(step), n: n, rng: rng}, nil

	case RandInt:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if p[0] != math.Trunc(p[0]) || p[1] != math.Trunc(p[1]) || p[1] < p[0] {
			return nil, fmt.Errorf("randint needs integers a <= b: %w", ErrInvalidParams)
		}
		return &rangeSampler{start: int64(p[0]), step: 1, n: int64(p[1]-p[0]) + 1, rng: rng}, nil

	case Random:
		if err := arity(p, 0); err != nil {
			return nil, err
		}
		return distuv.Uniform{Min: 0, Max: 1, Src: rng}, nil

	case Uniform:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		return distuv.Uniform{Min: p[0], Max: p[1], Src: rng}, nil

	case Triangular:
		if err := arity(p, 2, 3); err != nil {
			return nil, err
		}
		low, high := p[0], p[1]
		mode := (low + high) / 2
		if len(p) == 3 {
			mode = p[2]
		}
		if low > high || mode < low || mode > high {
			return nil, fmt.Errorf("triangular needs low <= mode <= high: %w", ErrInvalidParams)
		}
		if low == high {
			return constant(low), nil
		}
		return distuv.NewTriangle(low, high, mode, rng), nil

	case Beta:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := errors.Join(positive("alpha", p[0]), positive("beta", p[1])); err != nil {
			return nil, err
		}
		return distuv.Beta{Alpha: p[0], Beta: p[1], Src: rng}, nil

	case Exponential:
		if err := arity(p, 1); err != nil {
			return nil, err
		}
		if err := positive("lambda", p[0]); err != nil {
			return nil, err
		}
		return distuv.Exponential{Rate: p[0], Src: rng}, nil

	case Gamma:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := errors.Join(positive("shape", p[0]), positive("scale", p[1])); err != nil {
			return nil, err
		}
		// distuv.Gamma is parameterized by rate.
		return distuv.Gamma{Alpha: p[0], Beta: 1 / p[1], Src: rng}, nil

	case Gauss, Normal:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := nonNegative("sigma", p[1]); err != nil {
			return nil, err
		}
		return distuv.Normal{Mu: p[0], Sigma: p[1], Src: rng}, nil

	case LogNormal:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := nonNegative("sigma", p[1]); err != nil {
			return nil, err
		}
		return distuv.LogNormal{Mu: p[0], Sigma: p[1], Src: rng}, nil

	case VonMises:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := nonNegative("kappa", p[1]); err != nil {
			return nil, err
		}
		return &vonMises{mu: p[0], kappa: p[1], rng: rng}, nil

	case Pareto:
		if err := arity(p, 1); err != nil {
			return nil, err
		}
		if err := positive("alpha", p[0]); err != nil {
			return nil, err
		}
		return distuv.Pareto{Xm: 1, Alpha: p[0], Src: rng}, nil

	case Weibull:
		if err := arity(p, 2); err != nil {
			return nil, err
		}
		if err := errors.Join(positive("scale", p[0]), positive("shape", p[1])); err != nil {
			return nil, err
		}
		return distuv.Weibull{Lambda: p[0], K: p[1], Src: rng}, nil
	}
	return nil, fmt.Errorf("%w kind %d", ErrUnknownDistribution, int(kind))
}

// rangeSampler draws start + step*i for i uniform in [0, n).
type rangeSampler struct {
	start, step, n int64
	rng            *rand.Rand
}

func (s *rangeSampler) Rand() float64 {
	return float64(s.start + s.step*s.rng.Int64N(s.n))
}

// constant is the degenerate triangular distribution low == high.
type constant float64

func (c constant) Rand() float64 { return float64(c) }

// vonMises samples the circular normal distribution with the Best-Fisher
// rejection algorithm. Results are in [0, 2π). gonum has no von Mises type.
type vonMises struct {
	mu, kappa float64
	rng       *rand.Rand
}

func (v *vonMises) Rand() float64 {
	const twoPi = 2 * math.Pi
	if v.kappa <= 1e-6 {
		return twoPi * v.rng.Float64()
	}
	s := 0.5 / v.kappa
	r := s + math.Sqrt(1+s*s)
	var z float64
	for {
		u1 := v.rng.Float64()
		z = math.Cos(math.Pi * u1)
		d := z / (r + z)
		u2 := v.rng.Float64()
		if u2 < 1-d*d || u2 <= (1-d)*math.Exp(d) {
			break
		}
	}
	q := 1 / r
	f := (q + z) / (1 + q*z)
	var theta float64
	if v.rng.Float64() > 0.5 {
		theta = math.Mod(v.mu+math.Acos(f), twoPi)
	} else {
		theta = math.Mod(v.mu-math.Acos(f), twoPi)
	}
	if theta < 0 {
		theta += twoPi
	}
	return theta
}
