package session

// Step - шаг диалога, на котором пользователь должен прислать ответ.
type Step int

const (
	StepIdle Step = iota
	StepOrderAddress
	StepOrderTime
	StepOrderEquipment
	StepOrderProblem
	StepReportOrderID
	StepReportStatus
	StepReportTotalAmount
	StepReportCostPrice
	StepReportAgreedAmount
	StepReportCompletionDate
	StepReportCompletionTime
	StepReportWhatToDo
)

var stepNames = [...]string{
	StepIdle:                 "idle",
	StepOrderAddress:         "order_address",
	StepOrderTime:            "order_time",
	StepOrderEquipment:       "order_equipment",
	StepOrderProblem:         "order_problem",
	StepReportOrderID:        "report_order_id",
	StepReportStatus:         "report_status",
	StepReportTotalAmount:    "report_total_amount",
	StepReportCostPrice:      "report_cost_price",
	StepReportAgreedAmount:   "report_agreed_amount",
	StepReportCompletionDate: "report_completion_date",
	StepReportCompletionTime: "report_completion_time",
	StepReportWhatToDo:       "report_what_to_do",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

type Flow int

const (
	FlowNone Flow = iota
	FlowOrder
	FlowReport
)

func (s Step) Flow() Flow {
	switch {
	case s >= StepOrderAddress && s <= StepOrderProblem:
		return FlowOrder
	case s >= StepReportOrderID && s <= StepReportWhatToDo:
		return FlowReport
	default:
		return FlowNone
	}
}
