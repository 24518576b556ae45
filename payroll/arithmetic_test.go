package payroll_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/campushq/school-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(n float64) decimal.Decimal {
	return decimal.NewFromFloat(n)
}

func testStructure() payroll.SalaryStructure {
	return payroll.SalaryStructure{
		EmployeeID:   "EMP001",
		AcademicYear: 2026,
		BaseSalary:   money(40000),
		Allowances: payroll.AllowanceSet{
			HouseRent: money(8000),
			Dearness:  money(4000),
			Transport: money(1600),
		},
		Deductions: payroll.DeductionSet{
			ProvidentFund: money(4800),
			Tax:           money(2000),
		},
		Frequency: payroll.FrequencyMonthly,
	}
}

func fullAttendance() payroll.Attendance {
	return payroll.Attendance{WorkingDays: 22, PresentDays: 22}
}

// =============================================================================
// PAYSLIP COMPUTATION TESTS
// =============================================================================

func TestCompute_NetInvariant(t *testing.T) {
	// GIVEN: A valid structure
	// WHEN: Computing the payslip
	// THEN: net = basic + allowances - deductions, exactly

	slip, err := payroll.Compute(testStructure(), fullAttendance(), nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantNet := slip.BasicPay.Add(slip.TotalAllowances).Sub(slip.TotalDeductions)
	if !slip.NetPayable.Equal(wantNet) {
		t.Errorf("net payable %v, want %v", slip.NetPayable, wantNet)
	}
	if !slip.NetPayable.Equal(money(46800)) {
		t.Errorf("net payable %v, want 46800", slip.NetPayable)
	}
	if !slip.TotalAllowances.Equal(money(13600)) {
		t.Errorf("total allowances %v, want 13600", slip.TotalAllowances)
	}
	if !slip.TotalDeductions.Equal(money(6800)) {
		t.Errorf("total deductions %v, want 6800", slip.TotalDeductions)
	}
}

func TestCompute_DefaultIgnoresAttendance(t *testing.T) {
	// Without proration, loss-of-pay days do not change basic pay.
	att := payroll.Attendance{WorkingDays: 22, PresentDays: 10, LossOfPayDays: 12}

	slip, err := payroll.Compute(testStructure(), att, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !slip.BasicPay.Equal(money(40000)) {
		t.Errorf("basic pay %v, want flat 40000", slip.BasicPay)
	}
}

func TestCompute_AttendanceProration(t *testing.T) {
	// GIVEN: 11 of 22 working days present
	// WHEN: Computing with attendance proration
	// THEN: Basic pay is halved; allowances and deductions are untouched

	att := payroll.Attendance{WorkingDays: 22, PresentDays: 11, LossOfPayDays: 11}

	slip, err := payroll.Compute(testStructure(), att, payroll.AttendanceProration{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !slip.BasicPay.Equal(money(20000)) {
		t.Errorf("basic pay %v, want 20000", slip.BasicPay)
	}
	if !slip.TotalAllowances.Equal(money(13600)) {
		t.Errorf("allowances should not prorate, got %v", slip.TotalAllowances)
	}
}

func TestCompute_ProrationRounding(t *testing.T) {
	s := testStructure()
	s.BaseSalary = money(10000)
	att := payroll.Attendance{WorkingDays: 21, PresentDays: 20, LossOfPayDays: 1}

	slip, err := payroll.Compute(s, att, payroll.AttendanceProration{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// 10000 * 20/21 = 9523.8095... -> 9523.81
	if !slip.BasicPay.Equal(money(9523.81)) {
		t.Errorf("basic pay %v, want 9523.81", slip.BasicPay)
	}
}

func TestCompute_ZeroWorkingDaysProration(t *testing.T) {
	att := payroll.Attendance{}

	slip, err := payroll.Compute(testStructure(), att, payroll.AttendanceProration{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !slip.BasicPay.IsZero() {
		t.Errorf("zero working days should pay zero basic, got %v", slip.BasicPay)
	}
}

func TestCompute_NegativeAmountsRejected(t *testing.T) {
	// Every negative monetary field must fail validation.
	cases := []struct {
		name   string
		mutate func(*payroll.SalaryStructure)
	}{
		{"base_salary", func(s *payroll.SalaryStructure) { s.BaseSalary = money(-1) }},
		{"house_rent_allowance", func(s *payroll.SalaryStructure) { s.Allowances.HouseRent = money(-1) }},
		{"dearness_allowance", func(s *payroll.SalaryStructure) { s.Allowances.Dearness = money(-1) }},
		{"transport_allowance", func(s *payroll.SalaryStructure) { s.Allowances.Transport = money(-1) }},
		{"provident_fund", func(s *payroll.SalaryStructure) { s.Deductions.ProvidentFund = money(-1) }},
		{"tax", func(s *payroll.SalaryStructure) { s.Deductions.Tax = money(-1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testStructure()
			tc.mutate(&s)

			_, err := payroll.Compute(s, fullAttendance(), nil)
			if !errors.Is(err, payroll.ErrInvalidStructure) {
				t.Errorf("expected ErrInvalidStructure, got %v", err)
			}

			var invalid *payroll.InvalidStructureError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidStructureError, got %T", err)
			}
			if invalid.Field != tc.name {
				t.Errorf("error names field %q, want %q", invalid.Field, tc.name)
			}
		})
	}
}

func TestCompute_InvalidAttendance(t *testing.T) {
	_, err := payroll.Compute(testStructure(), payroll.Attendance{WorkingDays: -1}, nil)
	if !errors.Is(err, payroll.ErrInvalidStructure) {
		t.Errorf("negative working days should fail, got %v", err)
	}

	_, err = payroll.Compute(testStructure(),
		payroll.Attendance{WorkingDays: 20, PresentDays: 18, LossOfPayDays: 5}, nil)
	if !errors.Is(err, payroll.ErrInvalidStructure) {
		t.Errorf("present+lop > working should fail, got %v", err)
	}
}

func TestCompute_ZeroDeductions(t *testing.T) {
	s := testStructure()
	s.Deductions = payroll.DeductionSet{}

	slip, err := payroll.Compute(s, fullAttendance(), nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !slip.NetPayable.Equal(money(53600)) {
		t.Errorf("net payable %v, want 53600", slip.NetPayable)
	}
}
