package enums

// FunnelStage is the coarse progress marker the dashboard groups leads by.
type FunnelStage string

const (
	StageLeadCapture FunnelStage = "lead_capture"
	StagePurchased   FunnelStage = "purchased"
)

func (s FunnelStage) String() string {
	return string(s)
}
