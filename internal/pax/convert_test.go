package pax

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stemsi/paxcalc-backend/internal/model"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	classA = model.Class{Code: "SS", Name: "Super Street", PaxIndex: 0.844, IsActive: true}
	classB = model.Class{Code: "GS", Name: "G Street", PaxIndex: 0.83, IsActive: true}
)

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConvert_ToLowerIndexIsSlower(t *testing.T) {
	got, err := Convert(60.0, classA, classB)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !closeTo(got.OutputTime, 61.012) {
		t.Errorf("OutputTime = %v, want 61.012", got.OutputTime)
	}
	if !closeTo(got.TimeDifference, 1.012) {
		t.Errorf("TimeDifference = %v, want 1.012", got.TimeDifference)
	}
	if got.IsFaster {
		t.Error("IsFaster = true, want false")
	}
	if got.InputTime != 60 || got.InputClass != classA || got.OutputClass != classB {
		t.Errorf("inputs not carried through: %+v", got)
	}
}

func TestConvert_Swapped(t *testing.T) {
	got, err := Convert(60.0, classB, classA)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !closeTo(got.OutputTime, 59.005) {
		t.Errorf("OutputTime = %v, want 59.005", got.OutputTime)
	}
	if !closeTo(got.TimeDifference, -0.995) {
		t.Errorf("TimeDifference = %v, want -0.995", got.TimeDifference)
	}
	if !got.IsFaster {
		t.Error("IsFaster = false, want true")
	}
}

func TestConvert_DifferenceUsesRoundedOutput(t *testing.T) {
	got, err := Convert(47.321, classA, classB)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !closeTo(got.TimeDifference, got.OutputTime-47.321) {
		t.Errorf("TimeDifference = %v, OutputTime-InputTime = %v", got.TimeDifference, got.OutputTime-47.321)
	}
	formatted, err := FormatTime(got.OutputTime)
	if err != nil {
		t.Fatalf("FormatTime error: %v", err)
	}
	if back, _ := ParseTime(formatted); back != got.OutputTime {
		t.Errorf("OutputTime %v is not rounded to 3 decimals", got.OutputTime)
	}
}

func TestConvert_SameClass(t *testing.T) {
	for _, tt := range []float64{0.001, 45.678, 60, 3912.123} {
		got, err := Convert(tt, classA, classA)
		if err != nil {
			t.Fatalf("Convert(%v) error: %v", tt, err)
		}
		if got.OutputTime != tt || got.TimeDifference != 0 || got.IsFaster {
			t.Errorf("Convert(%v, X, X) = %+v", tt, got)
		}
	}
}

func TestConvert_NonPositiveTime(t *testing.T) {
	for _, tt := range []float64{0, -5, math.NaN()} {
		_, err := Convert(tt, classA, classB)
		if !errors.Is(err, ErrNonPositiveTime) {
			t.Errorf("Convert(%v) err = %v, want ErrNonPositiveTime", tt, err)
		}
		var de *DomainError
		if !errors.As(err, &de) {
			t.Errorf("Convert(%v) err is not a *DomainError", tt)
		}
	}
}

func TestConvert_NonPositivePax(t *testing.T) {
	zero := model.Class{Code: "Z", Name: "Zero", PaxIndex: 0}
	neg := model.Class{Code: "N", Name: "Negative", PaxIndex: -0.8}

	for _, pair := range [][2]model.Class{{zero, classB}, {classA, neg}, {zero, neg}} {
		_, err := Convert(60, pair[0], pair[1])
		if !errors.Is(err, ErrNonPositivePax) {
			t.Errorf("Convert(60, %s, %s) err = %v, want ErrNonPositivePax", pair[0].Code, pair[1].Code, err)
		}
	}

	// Time is checked before the indices.
	if _, err := Convert(0, zero, classB); !errors.Is(err, ErrNonPositiveTime) {
		t.Errorf("err = %v, want ErrNonPositiveTime", err)
	}
}

func TestConvert_NonFinite(t *testing.T) {
	if _, err := Convert(math.Inf(1), classA, classB); !errors.Is(err, ErrNonFiniteTime) {
		t.Errorf("err = %v, want ErrNonFiniteTime", err)
	}
}

func TestConvert_StampsCalculatedAt(t *testing.T) {
	orig := now
	now = func() time.Time { return testTime }
	defer func() { now = orig }()

	got, err := Convert(60, classA, classB)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !got.CalculatedAt.Equal(testTime) {
		t.Errorf("CalculatedAt = %v, want %v", got.CalculatedAt, testTime)
	}
}
