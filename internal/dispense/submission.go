package dispense

import "github.com/Spok95/clinic-stock/internal/client"

// Submission is the body sent to POST /transactions/. The variant is chosen
// by the material's narcotic flag: Plain for ordinary materials, Controlled
// when a compliance record must travel with the transaction.
type Submission interface {
	Request() client.TransactionCreate
	isSubmission()
}

type Plain struct {
	BatchID    int64
	MaterialID int64
	Delta      float64
}

func (p Plain) Request() client.TransactionCreate {
	return client.TransactionCreate{BatchID: p.BatchID, MaterialID: p.MaterialID, Delta: p.Delta}
}

func (Plain) isSubmission() {}

type Controlled struct {
	Plain
	PatientInfo string
	Reason      string
}

func (c Controlled) Request() client.TransactionCreate {
	r := c.Plain.Request()
	r.NarcoticLog = &client.NarcoticLogInput{PatientInfo: c.PatientInfo, Reason: c.Reason}
	return r
}

func (Controlled) isSubmission() {}
