package telemetry

import (
	"time"

	"github.com/hwinkel/luxpower-mqtt-bridge/internal/registers"
	"github.com/hwinkel/luxpower-mqtt-bridge/internal/serial"
)

// ReadInput1 is the register=0/len=80 window: the first third of a full
// snapshot, ending at the bus voltages.
type ReadInput1 struct {
	Status        uint16        `json:"status"`
	VPv1          float64       `json:"v_pv_1"`
	VPv2          float64       `json:"v_pv_2"`
	VPv3          float64       `json:"v_pv_3"`
	VBat          float64       `json:"v_bat"`
	Soc           int8          `json:"soc"`
	Soh           int8          `json:"soh"`
	InternalFault uint16        `json:"internal_fault"`
	PPv           uint16        `json:"p_pv"`
	PPv1          uint16        `json:"p_pv_1"`
	PPv2          uint16        `json:"p_pv_2"`
	PPv3          uint16        `json:"p_pv_3"`
	PBattery      int32         `json:"p_battery"`
	PCharge       uint16        `json:"p_charge"`
	PDischarge    uint16        `json:"p_discharge"`
	VAcR          float64       `json:"v_ac_r"`
	VAcS          float64       `json:"v_ac_s"`
	VAcT          float64       `json:"v_ac_t"`
	FAc           float64       `json:"f_ac"`
	PInv          uint16        `json:"p_inv"`
	PRec          uint16        `json:"p_rec"`
	Pf            float64       `json:"pf"`
	VEpsR         float64       `json:"v_eps_r"`
	VEpsS         float64       `json:"v_eps_s"`
	VEpsT         float64       `json:"v_eps_t"`
	FEps          float64       `json:"f_eps"`
	PEps          uint16        `json:"p_eps"`
	SEps          uint16        `json:"s_eps"`
	PGrid         int32         `json:"p_grid"`
	PToGrid       uint16        `json:"p_to_grid"`
	PToUser       uint16        `json:"p_to_user"`
	EPvDay        float64       `json:"e_pv_day"`
	EPvDay1       float64       `json:"e_pv_day_1"`
	EPvDay2       float64       `json:"e_pv_day_2"`
	EPvDay3       float64       `json:"e_pv_day_3"`
	EInvDay       float64       `json:"e_inv_day"`
	ERecDay       float64       `json:"e_rec_day"`
	EChgDay       float64       `json:"e_chg_day"`
	EDischgDay    float64       `json:"e_dischg_day"`
	EEpsDay       float64       `json:"e_eps_day"`
	EToGridDay    float64       `json:"e_to_grid_day"`
	EToUserDay    float64       `json:"e_to_user_day"`
	VBus1         float64       `json:"v_bus_1"`
	VBus2         float64       `json:"v_bus_2"`
	Time          time.Time     `json:"time"`
	Datalog       serial.Serial `json:"datalog"`
}

// ParseReadInput1 decodes the register=0/len=80 window.
func ParseReadInput1(raw []byte, datalog serial.Serial) *ReadInput1 {
	c := newCursor(raw)
	var r ReadInput1

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
	c.skip(2)
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

	r.PPv = r.PPv1 + r.PPv2 + r.PPv3
	r.PGrid = int32(r.PToUser) - int32(r.PToGrid)
	r.PBattery = int32(r.PCharge) - int32(r.PDischarge)
	r.EPvDay = registers.Round(r.EPvDay1+r.EPvDay2+r.EPvDay3, 1)

	r.Time = time.Now()
	r.Datalog = datalog
	return &r
}

// ReadInput2 is the register=40/len=80 window: cumulative energy totals,
// fault/warning codes and temperature sensors.
type ReadInput2 struct {
	EPvAll     float64 `json:"e_pv_all"`
	EPvAll1    float64 `json:"e_pv_all_1"`
	EPvAll2    float64 `json:"e_pv_all_2"`
	EPvAll3    float64 `json:"e_pv_all_3"`
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

	Time    time.Time     `json:"time"`
	Datalog serial.Serial `json:"datalog"`
}

// ParseReadInput2 decodes the register=40/len=80 window.
func ParseReadInput2(raw []byte, datalog serial.Serial) *ReadInput2 {
	c := newCursor(raw)
	var r ReadInput2

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
	c.skip(2)
	r.Runtime = c.u32()
	r.Register71 = c.u16()
	c.skip(10) // 72-76 auto_test
	r.Register77 = c.u16()

	r.EPvAll = registers.Round(r.EPvAll1+r.EPvAll2+r.EPvAll3, 1)

	r.Time = time.Now()
	r.Datalog = datalog
	return &r
}

// ReadInput3 is the register=80/len=80 window: BMS/battery detail.
type ReadInput3 struct {
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

	BmsFwUpdateState uint16  `json:"bms_fw_update_state"`
	CycleCount       uint16  `json:"cycle_count"`
	VbatInv          float64 `json:"vbat_inv"`

	T1Temp float64 `json:"t1_temp"`

	Register113 uint16 `json:"register_113"`
	POnGridLoad uint16 `json:"p_on_grid_load"`

	Time    time.Time     `json:"time"`
	Datalog serial.Serial `json:"datalog"`
}

// ParseReadInput3 decodes the register=80/len=80 window.
func ParseReadInput3(raw []byte, datalog serial.Serial) *ReadInput3 {
	c := newCursor(raw)
	var r ReadInput3

	c.skip(2)
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
	c.skip(8)
	r.Register113 = c.u16()
	r.POnGridLoad = c.u16()
	c.skip(10)

	r.Time = time.Now()
	r.Datalog = datalog
	return &r
}

// Windows accumulates the three partial reads for one datalog serial
// until all three are present, then merges them into a ReadInputAll.
// Mirrors the original firmware's "wait for the full triple" assembly.
type Windows struct {
	ri1 *ReadInput1
	ri2 *ReadInput2
	ri3 *ReadInput3
}

func (w *Windows) SetReadInput1(r *ReadInput1) { w.ri1 = r }
func (w *Windows) SetReadInput2(r *ReadInput2) { w.ri2 = r }
func (w *Windows) SetReadInput3(r *ReadInput3) { w.ri3 = r }

// Ready reports whether all three windows have been observed.
func (w *Windows) Ready() bool {
	return w.ri1 != nil && w.ri2 != nil && w.ri3 != nil
}

// Merge combines the three windows into a full ReadInputAll snapshot.
// The generator fields (v_half_bus, v_gen, f_gen, p_gen, e_gen_day,
// e_gen_all) are not present in any of the three short windows and are
// always zero here, matching the original assembly.
func (w *Windows) Merge() *ReadInputAll {
	if !w.Ready() {
		return nil
	}
	ri1, ri2, ri3 := w.ri1, w.ri2, w.ri3

	return &ReadInputAll{
		Status:           ri1.Status,
		VPv1:             ri1.VPv1,
		VPv2:             ri1.VPv2,
		VPv3:             ri1.VPv3,
		VBat:             ri1.VBat,
		Soc:              ri1.Soc,
		Soh:              ri1.Soh,
		InternalFault:    ri1.InternalFault,
		PPv:              ri1.PPv,
		PPv1:             ri1.PPv1,
		PPv2:             ri1.PPv2,
		PPv3:             ri1.PPv3,
		PBattery:         ri1.PBattery,
		PCharge:          ri1.PCharge,
		PDischarge:       ri1.PDischarge,
		VAcR:             ri1.VAcR,
		VAcS:             ri1.VAcS,
		VAcT:             ri1.VAcT,
		FAc:              ri1.FAc,
		PInv:             ri1.PInv,
		PRec:             ri1.PRec,
		Pf:               ri1.Pf,
		VEpsR:            ri1.VEpsR,
		VEpsS:            ri1.VEpsS,
		VEpsT:            ri1.VEpsT,
		FEps:             ri1.FEps,
		PEps:             ri1.PEps,
		SEps:             ri1.SEps,
		PGrid:            ri1.PGrid,
		PToGrid:          ri1.PToGrid,
		PToUser:          ri1.PToUser,
		EPvDay:           ri1.EPvDay,
		EPvDay1:          ri1.EPvDay1,
		EPvDay2:          ri1.EPvDay2,
		EPvDay3:          ri1.EPvDay3,
		EInvDay:          ri1.EInvDay,
		ERecDay:          ri1.ERecDay,
		EChgDay:          ri1.EChgDay,
		EDischgDay:       ri1.EDischgDay,
		EEpsDay:          ri1.EEpsDay,
		EToGridDay:       ri1.EToGridDay,
		EToUserDay:       ri1.EToUserDay,
		VBus1:            ri1.VBus1,
		VBus2:            ri1.VBus2,
		EPvAll:           ri2.EPvAll,
		EPvAll1:          ri2.EPvAll1,
		EPvAll2:          ri2.EPvAll2,
		EPvAll3:          ri2.EPvAll3,
		EInvAll:          ri2.EInvAll,
		ERecAll:          ri2.ERecAll,
		EChgAll:          ri2.EChgAll,
		EDischgAll:       ri2.EDischgAll,
		EEpsAll:          ri2.EEpsAll,
		EToGridAll:       ri2.EToGridAll,
		EToUserAll:       ri2.EToUserAll,
		FaultCode:        ri2.FaultCode,
		WarningCode:      ri2.WarningCode,
		TInner:           ri2.TInner,
		TRad1:            ri2.TRad1,
		TRad2:            ri2.TRad2,
		TBat:             ri2.TBat,
		Runtime:          ri2.Runtime,
		Register71:       ri2.Register71,
		Register77:       ri2.Register77,
		MaxChgCurr:       ri3.MaxChgCurr,
		MaxDischgCurr:    ri3.MaxDischgCurr,
		ChargeVoltRef:    ri3.ChargeVoltRef,
		DischgCutVolt:    ri3.DischgCutVolt,
		BatStatus0:       ri3.BatStatus0,
		BatStatus1:       ri3.BatStatus1,
		BatStatus2:       ri3.BatStatus2,
		BatStatus3:       ri3.BatStatus3,
		BatStatus4:       ri3.BatStatus4,
		BatStatus5:       ri3.BatStatus5,
		BatStatus6:       ri3.BatStatus6,
		BatStatus7:       ri3.BatStatus7,
		BatStatus8:       ri3.BatStatus8,
		BatStatus9:       ri3.BatStatus9,
		BatStatusInv:     ri3.BatStatusInv,
		BatCount:         ri3.BatCount,
		BatCapacity:      ri3.BatCapacity,
		BatCurrent:       ri3.BatCurrent,
		BmsEvent1:        ri3.BmsEvent1,
		BmsEvent2:        ri3.BmsEvent2,
		MaxCellVoltage:   ri3.MaxCellVoltage,
		MinCellVoltage:   ri3.MinCellVoltage,
		MaxCellTemp:      ri3.MaxCellTemp,
		MinCellTemp:      ri3.MinCellTemp,
		BmsFwUpdateState: ri3.BmsFwUpdateState,
		CycleCount:       ri3.CycleCount,
		VbatInv:          ri3.VbatInv,
		T1Temp:           ri3.T1Temp,
		Register113:      ri3.Register113,
		POnGridLoad:      ri3.POnGridLoad,
		VHalfBus:         0,
		VGen:             0,
		FGen:             0,
		PGen:             0,
		EGenDay:          0,
		EGenAll:          0,
		Datalog:          ri1.Datalog,
		Time:             ri1.Time,
	}
}
