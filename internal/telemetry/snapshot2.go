package telemetry

import (
	"time"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// ReadInputAll2 is the register=127/len=254 long form: EPS split-phase,
// AFCI, and three-phase fields not covered by ReadInputAll. Unlike
// ReadInputAll it is read directly off the wire with no derived fields.
type ReadInputAll2 struct {
	VEpsL1 float64 `json:"v_eps_l1"`
	VEpsL2 float64 `json:"v_eps_l2"`

	PEpsL1     uint16  `json:"p_eps_l1"`
	PEpsL2     uint16  `json:"p_eps_l2"`
	SEpsL1     uint16  `json:"s_eps_l1"`
	SEpsL2     uint16  `json:"s_eps_l2"`
	EEpsL1Day  float64 `json:"e_eps_l1_day"`
	EEpsL2Day  float64 `json:"e_eps_l2_day"`
	EEpsL1All  float64 `json:"e_eps_l1_all"`
	EEpsL2All  float64 `json:"e_eps_l2_all"`

	AfciCh1Current uint16 `json:"afci_ch1_current"`
	AfciCh2Current uint16 `json:"afci_ch2_current"`
	AfciCh3Current uint16 `json:"afci_ch3_current"`
	AfciCh4Current uint16 `json:"afci_ch4_current"`

	Register144 uint16 `json:"register_144"`

	AfciArcCh1 uint16 `json:"afci_arc_ch1"`
	AfciArcCh2 uint16 `json:"afci_arc_ch2"`
	AfciArcCh3 uint16 `json:"afci_arc_ch3"`
	AfciArcCh4 uint16 `json:"afci_arc_ch4"`

	AfciMaxArcCh1 uint16 `json:"afci_max_arc_ch1"`
	AfciMaxArcCh2 uint16 `json:"afci_max_arc_ch2"`
	AfciMaxArcCh3 uint16 `json:"afci_max_arc_ch3"`
	AfciMaxArcCh4 uint16 `json:"afci_max_arc_ch4"`

	PAcCouple uint16 `json:"p_ac_couple"`

	PLoad     uint16  `json:"p_load"`
	ELoadDay  float64 `json:"e_load_day"`
	ELoadAll  float64 `json:"e_load_all"`

	EpsOverloadCtrlTime uint16 `json:"eps_overload_ctrl_time"`

	PInvS   uint16 `json:"p_inv_s"`
	PInvT   uint16 `json:"p_inv_t"`
	PRecS   uint16 `json:"p_rec_s"`
	PRecT   uint16 `json:"p_rec_t"`
	PToGridS uint16 `json:"p_to_grid_s"`
	PToGridT uint16 `json:"p_to_grid_t"`
	PToUserS uint16 `json:"p_to_user_s"`
	PToUserT uint16 `json:"p_to_user_t"`
	PGenS    uint16 `json:"p_gen_s"`
	PGenT    uint16 `json:"p_gen_t"`

	InvRmsCurrS float64 `json:"inv_rms_curr_s"`
	InvRmsCurrT float64 `json:"inv_rms_curr_t"`

	PfS      float64 `json:"pf_s"`
	VGridL1  float64 `json:"v_grid_l1"`
	VGridL2  float64 `json:"v_grid_l2"`
	VGenL1   float64 `json:"v_gen_l1"`
	VGenL2   float64 `json:"v_gen_l2"`
	PInvL1   int16   `json:"p_inv_l1"`
	PInvL2   int16   `json:"p_inv_l2"`
	PRecL1   int16   `json:"p_rec_l1"`
	PRecL2   int16   `json:"p_rec_l2"`
	PToGridL1 uint16 `json:"p_to_grid_l1"`
	PToGridL2 uint16 `json:"p_to_grid_l2"`
	PToUserL1 uint16 `json:"p_to_user_l1"`
	PToUserL2 uint16 `json:"p_to_user_l2"`
	PfT       float64 `json:"pf_t"`

	Time    time.Time     `json:"time"`
	Datalog serial.Serial `json:"datalog"`
}

// ParseReadInputAll2 decodes the register=127/len=254 long form.
func ParseReadInputAll2(raw []byte, datalog serial.Serial) *ReadInputAll2 {
	c := newCursor(raw)
	var r ReadInputAll2

	r.VEpsL1 = c.divU16(10)
	r.VEpsL2 = c.divU16(10)
	r.PEpsL1 = c.u16()
	r.PEpsL2 = c.u16()
	r.SEpsL1 = c.u16()
	r.SEpsL2 = c.u16()
	r.EEpsL1Day = c.divU16(10)
	r.EEpsL2Day = c.divU16(10)
	r.EEpsL1All = c.divU32(10)
	r.EEpsL2All = c.divU32(10)
	c.skip(2) // Qinv
	r.AfciCh1Current = c.u16()
	r.AfciCh2Current = c.u16()
	r.AfciCh3Current = c.u16()
	r.AfciCh4Current = c.u16()
	r.Register144 = c.u16()
	r.AfciArcCh1 = c.u16()
	r.AfciArcCh2 = c.u16()
	r.AfciArcCh3 = c.u16()
	r.AfciArcCh4 = c.u16()
	r.AfciMaxArcCh1 = c.u16()
	r.AfciMaxArcCh2 = c.u16()
	r.AfciMaxArcCh3 = c.u16()
	r.AfciMaxArcCh4 = c.u16()
	r.PAcCouple = c.u16()
	c.skip(16) // Auto Test Trip Value 0-7
	c.skip(16) // Auto Test Trip Time 0-7
	r.PLoad = c.u16()
	r.ELoadDay = c.divU16(10)
	r.ELoadAll = c.divU32(10)
	c.skip(2) // Safety Switch State
	r.EpsOverloadCtrlTime = c.u16()
	c.skip(8)
	r.PInvS = c.u16()
	r.PInvT = c.u16()
	r.PRecS = c.u16()
	r.PRecT = c.u16()
	r.PToGridS = c.u16()
	r.PToGridT = c.u16()
	r.PToUserS = c.u16()
	r.PToUserT = c.u16()
	r.PGenS = c.u16()
	r.PGenT = c.u16()
	r.InvRmsCurrS = c.divU16(100)
	r.InvRmsCurrT = c.divU16(100)
	r.PfS = c.divI16(1000)
	r.VGridL1 = c.divI16(10)
	r.VGridL2 = c.divI16(10)
	r.VGenL1 = c.divI16(10)
	r.VGenL2 = c.divI16(10)
	r.PInvL1 = c.i16()
	r.PInvL2 = c.i16()
	r.PRecL1 = c.i16()
	r.PRecL2 = c.i16()
	r.PToGridL1 = c.u16()
	r.PToGridL2 = c.u16()
	r.PToUserL1 = c.u16()
	r.PToUserL2 = c.u16()
	r.PfT = c.divI16(1000)

	r.Time = time.Now()
	r.Datalog = datalog
	return &r
}
