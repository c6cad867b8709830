package inventory

import (
	"errors"
	"testing"
)

func TestCheckTransaction(t *testing.T) {
	plain := BatchState{MaterialID: 1, Current: 10}
	narcotic := BatchState{MaterialID: 2, Current: 10, IsNarcotic: true}
	log := &NarcoticLogInput{PatientInfo: "Ivanov I.I., card 1234", Reason: "post-op pain"}

	cases := []struct {
		name  string
		batch BatchState
		in    TransactionInput
		want  error
	}{
		{"plain dispense", plain, TransactionInput{MaterialID: 1, Delta: -3}, nil},
		{"whole batch", plain, TransactionInput{MaterialID: 1, Delta: -10}, nil},
		{"replenish", plain, TransactionInput{MaterialID: 1, Delta: 5}, nil},
		{"zero delta", plain, TransactionInput{MaterialID: 1, Delta: 0}, ErrZeroDelta},
		{"over batch", plain, TransactionInput{MaterialID: 1, Delta: -11}, ErrInsufficientQuantity},
		{"foreign batch", plain, TransactionInput{MaterialID: 9, Delta: -1}, ErrBatchMismatch},
		{"log on plain", plain, TransactionInput{MaterialID: 1, Delta: -1, NarcoticLog: log}, ErrLogOnPlain},
		{"narcotic with log", narcotic, TransactionInput{MaterialID: 2, Delta: -1, NarcoticLog: log}, nil},
		{"narcotic without log", narcotic, TransactionInput{MaterialID: 2, Delta: -1}, ErrComplianceRequired},
		{"narcotic blank patient", narcotic, TransactionInput{MaterialID: 2, Delta: -1, NarcoticLog: &NarcoticLogInput{PatientInfo: "  ", Reason: "pain"}}, ErrComplianceRequired},
		{"narcotic over batch", narcotic, TransactionInput{MaterialID: 2, Delta: -11, NarcoticLog: log}, ErrInsufficientQuantity},
		{"narcotic restock", narcotic, TransactionInput{MaterialID: 2, Delta: 10}, nil},
		{"finest step", plain, TransactionInput{MaterialID: 1, Delta: -0.001}, nil},
		{"below column scale", plain, TransactionInput{MaterialID: 1, Delta: -0.0004}, ErrInvalidQuantity},
		{"rounded on store", plain, TransactionInput{MaterialID: 1, Delta: 0.0006}, ErrInvalidQuantity},
		{"column overflow", plain, TransactionInput{MaterialID: 1, Delta: 1e11}, ErrInvalidQuantity},
		{"balance overflow", BatchState{MaterialID: 1, Current: 99999999999}, TransactionInput{MaterialID: 1, Delta: 1}, ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			if in.NarcoticLog != nil {
				l := *in.NarcoticLog
				in.NarcoticLog = &l
			}
			err := CheckTransaction(tc.batch, &in)
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCheckTransactionTrimsLog(t *testing.T) {
	in := TransactionInput{MaterialID: 2, Delta: -1, NarcoticLog: &NarcoticLogInput{PatientInfo: " Petrov ", Reason: " pain\n"}}
	if err := CheckTransaction(BatchState{MaterialID: 2, Current: 1, IsNarcotic: true}, &in); err != nil {
		t.Fatal(err)
	}
	if in.NarcoticLog.PatientInfo != "Petrov" || in.NarcoticLog.Reason != "pain" {
		t.Fatalf("log = %+v", in.NarcoticLog)
	}
}
