package telemetry

import (
	"time"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// ReadInputAll is the full telemetry snapshot, either assembled from a
// ReadInput1+ReadInput2+ReadInput3 triple or read directly off the wire as
// the register=0/len=254 long form.
type ReadInputAll struct {
	Status uint16 `json:"status"`

	VPv1 float64 `json:"v_pv_1"`
	VPv2 float64 `json:"v_pv_2"`
	VPv3 float64 `json:"v_pv_3"`
	VBat float64 `json:"v_bat"`

	Soc int8 `json:"soc"`
	Soh int8 `json:"soh"`

	InternalFault uint16 `json:"internal_fault"`

	PPv   uint16 `json:"p_pv"` // derived: p_pv_1+p_pv_2+p_pv_3
	PPv1  uint16 `json:"p_pv_1"`
	PPv2  uint16 `json:"p_pv_2"`
	PPv3  uint16 `json:"p_pv_3"`

	PBattery   int32  `json:"p_battery"` // derived: p_charge-p_discharge
	PCharge    uint16 `json:"p_charge"`
	PDischarge uint16 `json:"p_discharge"`

	VAcR float64 `json:"v_ac_r"`
	VAcS float64 `json:"v_ac_s"`
	VAcT float64 `json:"v_ac_t"`
	FAc  float64 `json:"f_ac"`

	PInv uint16 `json:"p_inv"`
	PRec uint16 `json:"p_rec"`

	Pf float64 `json:"pf"`

	VEpsR float64 `json:"v_eps_r"`
	VEpsS float64 `json:"v_eps_s"`
	VEpsT float64 `json:"v_eps_t"`
	FEps  float64 `json:"f_eps"`
	PEps  uint16  `json:"p_eps"`
	SEps  uint16  `json:"s_eps"`

	PGrid    int32  `json:"p_grid"` // derived: p_to_user-p_to_grid
	PToGrid  uint16 `json:"p_to_grid"`
	PToUser  uint16 `json:"p_to_user"`

	EPvDay   float64 `json:"e_pv_day"` // derived: sum of the three components, rounded to 1dp
	EPvDay1  float64 `json:"e_pv_day_1"`
	EPvDay2  float64 `json:"e_pv_day_2"`
	EPvDay3  float64 `json:"e_pv_day_3"`

	EInvDay    float64 `json:"e_inv_day"`
	ERecDay    float64 `json:"e_rec_day"`
	EChgDay    float64 `json:"e_chg_day"`
	EDischgDay float64 `json:"e_dischg_day"`
	EEpsDay    float64 `json:"e_eps_day"`
	EToGridDay float64 `json:"e_to_grid_day"`
	EToUserDay float64 `json:"e_to_user_day"`

	VBus1 float64 `json:"v_bus_1"`
	VBus2 float64 `json:"v_bus_2"`

	EPvAll  float64 `json:"e_pv_all"` // derived: sum of the three components, rounded to 1dp
	EPvAll1 float64 `json:"e_pv_all_1"`
	EPvAll2 float64 `json:"e_pv_all_2"`
	EPvAll3 float64 `json:"e_pv_all_3"`

	EInvAll    float64 `json:"e_inv_all"`
	ERecAll    float64 `json:"e_rec_all"`
	EChgAll    float64 `json:"e_chg_all"`
	EDischgAll float64 `json:"e_dischg_all"`
	EEpsAll    float64 `json:"e_eps_all"`
	EToGridAll float64 `json:"e_to_grid_all"`
	EToUserAll float64 `json:"e_to_user_all"`

	FaultCode   uint32 `json:"fault_code"`
	WarningCode uint32 `json:"warning_code"`

	TInner int16 `json:"t_inner"`
	TRad1  int16 `json:"t_rad_1"`
	TRad2  int16 `json:"t_rad_2"`
	TBat   int16 `json:"t_bat"`

	Runtime    uint32 `json:"runtime"`
	Register71 uint16 `json:"register_71"`
	Register77 uint16 `json:"register_77"`

	MaxChgCurr    float64 `json:"max_chg_curr"`
	MaxDischgCurr float64 `json:"max_dischg_curr"`
	ChargeVoltRef float64 `json:"charge_volt_ref"`
	DischgCutVolt float64 `json:"dischg_cut_volt"`

	BatStatus0   uint16 `json:"bat_status_0"`
	BatStatus1   uint16 `json:"bat_status_1"`
	BatStatus2   uint16 `json:"bat_status_2"`
	BatStatus3   uint16 `json:"bat_status_3"`
	BatStatus4   uint16 `json:"bat_status_4"`
	BatStatus5   uint16 `json:"bat_status_5"`
	BatStatus6   uint16 `json:"bat_status_6"`
	BatStatus7   uint16 `json:"bat_status_7"`
	BatStatus8   uint16 `json:"bat_status_8"`
	BatStatus9   uint16 `json:"bat_status_9"`
	BatStatusInv uint16 `json:"bat_status_inv"`

	BatCount    uint16  `json:"bat_count"`
	BatCapacity uint16  `json:"bat_capacity"`
	BatCurrent  float64 `json:"bat_current"`

	BmsEvent1 uint16 `json:"bms_event_1"`
	BmsEvent2 uint16 `json:"bms_event_2"`

	MaxCellVoltage float64 `json:"max_cell_voltage"`
	MinCellVoltage float64 `json:"min_cell_voltage"`
	MaxCellTemp    float64 `json:"max_cell_temp"`
	MinCellTemp    float64 `json:"min_cell_temp"`

	BmsFwUpdateState uint16 `json:"bms_fw_update_state"`
	CycleCount       uint16 `json:"cycle_count"`
	VbatInv          float64 `json:"vbat_inv"`

	T1Temp float64 `json:"t1_temp"`

	Register113  uint16 `json:"register_113"`
	POnGridLoad  uint16 `json:"p_on_grid_load"`

	VHalfBus float64 `json:"v_half_bus"`
	VGen     float64 `json:"v_gen"`
	FGen     float64 `json:"f_gen"`
	PGen     uint16  `json:"p_gen"`
	EGenDay  float64 `json:"e_gen_day"`
	EGenAll  float64 `json:"e_gen_all"`

	Time    time.Time     `json:"time"`
	Datalog serial.Serial `json:"datalog"`
}

// ParseReadInputAll decodes the register=0/len=254 long form directly.
func ParseReadInputAll(raw []byte) *ReadInputAll {
	c := newCursor(raw)
	var r ReadInputAll

	r.Status = c.u16()
	r.VPv1 = c.divU16(10)
	r.VPv2 = c.divU16(10)
	r.VPv3 = c.divU16(10)
	r.VBat = c.divU16(10)
	r.Soc = c.i8()
	r.Soh = c.i8()
	r.InternalFault = c.u16()
	r.PPv1 = c.u16()
	r.PPv2 = c.u16()
	r.PPv3 = c.u16()
	r.PCharge = c.u16()
	r.PDischarge = c.u16()
	r.VAcR = c.divU16(10)
	r.VAcS = c.divU16(10)
	r.VAcT = c.divU16(10)
	r.FAc = c.divU16(100)
	r.PInv = c.u16()
	r.PRec = c.u16()
	c.skip(2) // IinvRMS
	r.Pf = c.divU16(1000)
	r.VEpsR = c.divU16(10)
	r.VEpsS = c.divU16(10)
	r.VEpsT = c.divU16(10)
	r.FEps = c.divU16(100)
	r.PEps = c.u16()
	r.SEps = c.u16()
	r.PToGrid = c.u16()
	r.PToUser = c.u16()
	r.EPvDay1 = c.divU16(10)
	r.EPvDay2 = c.divU16(10)
	r.EPvDay3 = c.divU16(10)
	r.EInvDay = c.divU16(10)
	r.ERecDay = c.divU16(10)
	r.EChgDay = c.divU16(10)
	r.EDischgDay = c.divU16(10)
	r.EEpsDay = c.divU16(10)
	r.EToGridDay = c.divU16(10)
	r.EToUserDay = c.divU16(10)
	r.VBus1 = c.divU16(10)
	r.VBus2 = c.divU16(10)
	r.EPvAll1 = c.divU32(10)
	r.EPvAll2 = c.divU32(10)
	r.EPvAll3 = c.divU32(10)
	r.EInvAll = c.divU32(10)
	r.ERecAll = c.divU32(10)
	r.EChgAll = c.divU32(10)
	r.EDischgAll = c.divU32(10)
	r.EEpsAll = c.divU32(10)
	r.EToGridAll = c.divU32(10)
	r.EToUserAll = c.divU32(10)
	r.FaultCode = c.u32()
	r.WarningCode = c.u32()
	r.TInner = c.i16()
	r.TRad1 = c.i16()
	r.TRad2 = c.i16()
	r.TBat = c.i16()
	c.skip(2) // reserved, radiator 3?
	r.Runtime = c.u32()
	r.Register71 = c.u16()
	c.skip(10) // 72-76 auto_test
	r.Register77 = c.u16()
	c.skip(4) // 78-79 unspecified
	c.skip(2) // bat_brand, bat_com_type
	r.MaxChgCurr = c.divU16(10)
	r.MaxDischgCurr = c.divU16(10)
	r.ChargeVoltRef = c.divU16(10)
	r.DischgCutVolt = c.divU16(10)
	r.BatStatus0 = c.u16()
	r.BatStatus1 = c.u16()
	r.BatStatus2 = c.u16()
	r.BatStatus3 = c.u16()
	r.BatStatus4 = c.u16()
	r.BatStatus5 = c.u16()
	r.BatStatus6 = c.u16()
	r.BatStatus7 = c.u16()
	r.BatStatus8 = c.u16()
	r.BatStatus9 = c.u16()
	r.BatStatusInv = c.u16()
	r.BatCount = c.u16()
	r.BatCapacity = c.u16()
	r.BatCurrent = c.divU16(100)
	r.BmsEvent1 = c.u16()
	r.BmsEvent2 = c.u16()
	r.MaxCellVoltage = c.divU16(1000)
	r.MinCellVoltage = c.divU16(1000)
	r.MaxCellTemp = c.divU16(10)
	r.MinCellTemp = c.divU16(10)
	r.BmsFwUpdateState = c.u16()
	r.CycleCount = c.u16()
	r.VbatInv = c.divU16(10)
	r.T1Temp = c.divU16(10)
	c.skip(8) // 109-112 reserved T2-T5 sensors
	r.Register113 = c.u16()
	r.POnGridLoad = c.u16()
	c.skip(10) // 115-119 serial number
	r.VHalfBus = c.divU16(10)
	r.VGen = c.divU16(10)
	r.FGen = c.divU16(100)
	r.PGen = c.u16()
	r.EGenDay = c.divU16(10)
	r.EGenAll = c.divU32(10)

	r.Time = time.Now()
	finishSnapshot(&r)
	return &r
}

func finishSnapshot(r *ReadInputAll) {
	r.PPv = r.PPv1 + r.PPv2 + r.PPv3
	r.PGrid = int32(r.PToUser) - int32(r.PToGrid)
	r.PBattery = int32(r.PCharge) - int32(r.PDischarge)
	r.EPvDay = registers.Round(r.EPvDay1+r.EPvDay2+r.EPvDay3, 1)
	r.EPvAll = registers.Round(r.EPvAll1+r.EPvAll2+r.EPvAll3, 1)
}
