package mining

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	internal "github.com/ZanzyTHEbar/husrm/husrm"
	"github.com/ZanzyTHEbar/husrm/husrm/indexing"
)

var (
	ErrInvalidConfig      = errors.New("invalid mining configuration")
	ErrInvariantViolation = errors.New("mining invariant violated")
)

// Strategies toggles the four optimizations. Every combination yields the
// same rules; they only change how much work is done.
type Strategies struct {
	// PruneItems removes items whose estimated utility is below the threshold before mining.
	PruneItems bool
	// PrunePairs discards candidate pairs whose estimated utility is below the threshold.
	PrunePairs bool
	// BitVectorSets uses the configured set kind; disabled forces sorted lists.
	BitVectorSets bool
	// TightBounds drops the right-only utility from the left-expansion bound.
	TightBounds bool
}

// AllStrategies enables every optimization.
func AllStrategies() Strategies {
	return Strategies{PruneItems: true, PrunePairs: true, BitVectorSets: true, TightBounds: true}
}

// StrategyCombinations returns all sixteen on/off combinations, starting with
// everything enabled.
func StrategyCombinations() []Strategies {
	combos := make([]Strategies, 0, 16)
	for mask := 0; mask < 16; mask++ {
		combos = append(combos, Strategies{
			PruneItems:    mask&1 == 0,
			PrunePairs:    mask&2 == 0,
			BitVectorSets: mask&4 == 0,
			TightBounds:   mask&8 == 0,
		})
	}
	return combos
}

// Disable turns off strategy n, numbered 1 to 4.
func (s *Strategies) Disable(n int) error {
	switch n {
	case 1:
		s.PruneItems = false
	case 2:
		s.PrunePairs = false
	case 3:
		s.BitVectorSets = false
	case 4:
		s.TightBounds = false
	default:
		return fmt.Errorf("%w: no strategy %d (expected 1-4)", ErrInvalidConfig, n)
	}
	return nil
}

// String lists the enabled strategy numbers, e.g. "1,2,4", or "none".
func (s Strategies) String() string {
	var on []string
	for i, enabled := range []bool{s.PruneItems, s.PrunePairs, s.BitVectorSets, s.TightBounds} {
		if enabled {
			on = append(on, fmt.Sprint(i+1))
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

// Config holds the mining thresholds.
type Config struct {
	MinUtility    float64 `validate:"gte=0"`
	MinConfidence float64 `validate:"gte=0,lte=1"`
	MaxAntecedent int     `validate:"gte=1"`
	MaxConsequent int     `validate:"gte=1"`
	SetKind       indexing.Kind
	Strategies    Strategies
}

// DefaultConfig returns the default thresholds with every strategy enabled.
func DefaultConfig() Config {
	kind, _ := indexing.ParseKind(internal.DefaultSetKind)
	return Config{
		MinUtility:    internal.DefaultMinUtility,
		MinConfidence: internal.DefaultMinConfidence,
		MaxAntecedent: internal.DefaultMaxAntecedent,
		MaxConsequent: internal.DefaultMaxConsequent,
		SetKind:       kind,
		Strategies:    AllStrategies(),
	}
}

var validate = validator.New()

// Validate rejects out-of-range thresholds and sizes.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.SetKind {
	case indexing.KindBitVector, indexing.KindSortedList, indexing.KindRoaring:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.SetKind)
	}
	return nil
}

// EffectiveMinUtility returns the utility threshold used while mining. Zero
// is raised to a small epsilon so zero-utility rules are never reported.
func (c Config) EffectiveMinUtility() float64 {
	if c.MinUtility == 0 {
		return internal.MinUtilityEpsilon
	}
	return c.MinUtility
}

// EffectiveSetKind returns the set representation used for a run.
func (c Config) EffectiveSetKind() indexing.Kind {
	if !c.Strategies.BitVectorSets {
		return indexing.KindSortedList
	}
	return c.SetKind
}
