package registers

// onOff renders a bit as the "ON"/"OFF" labels the bus-discovery convention
// expects, matching the original firmware documentation's own vocabulary.
func onOff(data, bit uint16) string {
	if data&bit == bit {
		return "ON"
	}
	return "OFF"
}

// Register21Bits decodes the "FuncEn" function-enable register. Field
// order is fixed so its JSON encoding is stable across runs.
type Register21Bits struct {
	EpsEn           string `json:"eps_en"`
	OvfLoadDerateEn string `json:"ovf_load_derate_en"`
	DrmsEn          string `json:"drms_en"`
	LvrtEn          string `json:"lvrt_en"`
	AntiIslandEn    string `json:"anti_island_en"`
	NeutralDetectEn string `json:"neutral_detect_en"`
	GridOnPowerSsEn string `json:"grid_on_power_ss_en"`
	AcChargeEn      string `json:"ac_charge_en"`
	SwSeamlessEn    string `json:"sw_seamless_en"`
	SetToStandby    string `json:"set_to_standby"`
	ForcedDischargeEn string `json:"forced_discharge_en"`
	ChargePriorityEn  string `json:"charge_priority_en"`
	IsoEn             string `json:"iso_en"`
	GfciEn            string `json:"gfci_en"`
	DciEn             string `json:"dci_en"`
	FeedInGridEn      string `json:"feed_in_grid_en"`
}

func DecodeRegister21(data uint16) Register21Bits {
	return Register21Bits{
		EpsEn:             onOff(data, 1<<0),
		OvfLoadDerateEn:   onOff(data, 1<<1),
		DrmsEn:            onOff(data, 1<<2),
		LvrtEn:            onOff(data, 1<<3),
		AntiIslandEn:      onOff(data, 1<<4),
		NeutralDetectEn:   onOff(data, 1<<5),
		GridOnPowerSsEn:   onOff(data, 1<<6),
		AcChargeEn:        onOff(data, 1<<7),
		SwSeamlessEn:      onOff(data, 1<<8),
		SetToStandby:      onOff(data, 1<<9),
		ForcedDischargeEn: onOff(data, 1<<10),
		ChargePriorityEn:  onOff(data, 1<<11),
		IsoEn:             onOff(data, 1<<12),
		GfciEn:            onOff(data, 1<<13),
		DciEn:             onOff(data, 1<<14),
		FeedInGridEn:      onOff(data, 1<<15),
	}
}

// Register21Bit names the individual bits of Register21 so the command
// synthesiser (C7) can read-modify-write a single named bit by name.
type Register21Bit uint16

const (
	BitEpsEn             Register21Bit = 1 << 0
	BitOvfLoadDerateEn   Register21Bit = 1 << 1
	BitDrmsEn            Register21Bit = 1 << 2
	BitLvrtEn            Register21Bit = 1 << 3
	BitAntiIslandEn      Register21Bit = 1 << 4
	BitNeutralDetectEn   Register21Bit = 1 << 5
	BitGridOnPowerSsEn   Register21Bit = 1 << 6
	BitAcChargeEn        Register21Bit = 1 << 7
	BitSwSeamlessEn      Register21Bit = 1 << 8
	BitSetToStandby      Register21Bit = 1 << 9
	BitForcedDischargeEn Register21Bit = 1 << 10
	BitChargePriorityEn  Register21Bit = 1 << 11
	BitIsoEn             Register21Bit = 1 << 12
	BitGfciEn            Register21Bit = 1 << 13
	BitDciEn             Register21Bit = 1 << 14
	BitFeedInGridEn      Register21Bit = 1 << 15
)

// Register110Bits decodes FunctionEnable1.
type Register110Bits struct {
	UbPvGridOffEn     string `json:"ub_pv_grid_off_en"`
	UbRunWithoutGrid  string `json:"ub_run_without_grid"`
	UbMicroGridEn     string `json:"ub_micro_grid_en"`
	UbBatSharedEn     string `json:"ub_bat_shared_en"`
	UbChargeLastEn    string `json:"ub_charge_last_en"`
	BuzzerEn          string `json:"buzzer_en"`
	TakeLoadTogether  string `json:"take_load_together"`
	GreenModeEn       string `json:"green_mode_en"`
	EcoModeEn         string `json:"eco_mode_en"`
}

func DecodeRegister110(data uint16) Register110Bits {
	return Register110Bits{
		UbPvGridOffEn:    onOff(data, 1<<0),
		UbRunWithoutGrid: onOff(data, 1<<1),
		UbMicroGridEn:    onOff(data, 1<<2),
		UbBatSharedEn:    onOff(data, 1<<3),
		UbChargeLastEn:   onOff(data, 1<<4),
		BuzzerEn:         onOff(data, 1<<7),
		TakeLoadTogether: onOff(data, 1<<10),
		GreenModeEn:      onOff(data, 1<<14),
		EcoModeEn:        onOff(data, 1<<15),
	}
}

// Register113Bits decodes SetComposedPhase.
type Register113Bits struct {
	MasterOrSlave      string `json:"master_or_slave"`
	SingleOrThreePhase string `json:"single_or_three_phase"`
	PhasesSequence     string `json:"phases_sequence"`
	ParallelNum        uint8  `json:"parallel_num"`
}

func DecodeRegister113(data uint16) Register113Bits {
	masterOrSlave := func(v uint16) string {
		switch v {
		case 1:
			return "Master"
		case 2:
			return "Slave"
		default:
			return "Unknown"
		}
	}
	singleOrThreePhase := func(v uint16) string {
		switch v {
		case 1:
			return "R"
		case 2:
			return "S"
		case 3:
			return "T"
		default:
			return "Unknown"
		}
	}
	phasesSequence := func(v uint16) string {
		switch v {
		case 0:
			return "Positive Order"
		case 1:
			return "Negative Order"
		default:
			return "Unknown"
		}
	}
	return Register113Bits{
		MasterOrSlave:      masterOrSlave((data >> 0) & 0b11),
		SingleOrThreePhase: singleOrThreePhase((data >> 2) & 0b11),
		PhasesSequence:     phasesSequence((data >> 4) & 0b11),
		ParallelNum:        uint8((data >> 8) & 0xff),
	}
}

// Register120Bits decodes StSysEnable.
type Register120Bits struct {
	HalfHourAcChargeStartEn string `json:"half_hour_ac_charge_start_en"`
	DischargeCtrlType       string `json:"discharge_ctrl_type"`
	OnGridEodType           string `json:"on_grid_eod_type"`
	GenChargeType           string `json:"gen_charge_type"`
}

func DecodeRegister120(data uint16) Register120Bits {
	discharge := func(v uint16) string {
		switch v {
		case 0:
			return "According to voltage"
		case 1:
			return "According to state of charge"
		case 2:
			return "According to state of charge and voltage"
		default:
			return "Unknown"
		}
	}
	onGridEod := func(v uint16) string {
		switch v {
		case 0:
			return "According to voltage"
		case 1:
			return "According to state of charge"
		default:
			return "Unknown"
		}
	}
	genCharge := func(v uint16) string {
		switch v {
		case 0:
			return "According to voltage"
		case 1:
			return "According to state of charge"
		default:
			return "Unknown"
		}
	}
	return Register120Bits{
		HalfHourAcChargeStartEn: onOff(data, 1<<0),
		DischargeCtrlType:       discharge((data >> 4) & 0b11),
		OnGridEodType:           onGridEod((data >> 6) & 0b1),
		GenChargeType:           genCharge((data >> 7) & 0b1),
	}
}

// Register144Bits decodes FloatChargeVolt, which also doubles as the AFCI
// channel alarm/self-test flag register.
type Register144Bits struct {
	AfciFlagArcAlarmCh1     string `json:"afci_flag_arc_alarm_ch1"`
	AfciFlagArcAlarmCh2     string `json:"afci_flag_arc_alarm_ch2"`
	AfciFlagArcAlarmCh3     string `json:"afci_flag_arc_alarm_ch3"`
	AfciFlagArcAlarmCh4     string `json:"afci_flag_arc_alarm_ch4"`
	AfciFlagSelfTestFailCh1 string `json:"afci_flag_self_test_fail_ch1"`
	AfciFlagSelfTestFailCh2 string `json:"afci_flag_self_test_fail_ch2"`
	AfciFlagSelfTestFailCh3 string `json:"afci_flag_self_test_fail_ch3"`
	AfciFlagSelfTestFailCh4 string `json:"afci_flag_self_test_fail_ch4"`
}

func DecodeRegister144(data uint16) Register144Bits {
	return Register144Bits{
		AfciFlagArcAlarmCh1:     onOff(data, 1<<0),
		AfciFlagArcAlarmCh2:     onOff(data, 1<<1),
		AfciFlagArcAlarmCh3:     onOff(data, 1<<2),
		AfciFlagArcAlarmCh4:     onOff(data, 1<<3),
		AfciFlagSelfTestFailCh1: onOff(data, 1<<4),
		AfciFlagSelfTestFailCh2: onOff(data, 1<<5),
		AfciFlagSelfTestFailCh3: onOff(data, 1<<6),
		AfciFlagSelfTestFailCh4: onOff(data, 1<<7),
	}
}

// Register179Bits decodes FunctionEnable2.
type Register179Bits struct {
	AcCtDirection      string `json:"ac_ct_direction"`
	PvCtDirection      string `json:"pv_ct_direction"`
	PvSellFirst        string `json:"pv_sell_first"`
	VoltWattEn         string `json:"volt_watt_en"`
	TriptimeUnit       string `json:"triptime_unit"`
	ActPowerCmdEn      string `json:"act_power_cmd_en"`
	UbGridPeakShaving  string `json:"ub_grid_peak_shaving"`
	UbGenPeakShaving   string `json:"ub_gen_peak_shaving"`
	UbBatChargeControl string `json:"ub_bat_charge_control"`
	UbBatDischgControl string `json:"ub_bat_dischg_control"`
	UbAcCoupling       string `json:"ub_ac_coupling"`
	UbPvArcEn          string `json:"ub_pv_arc_en"`
	UbSmartLoadEn      string `json:"ub_smart_load_en"`
	UbRsdDisable       string `json:"ub_rsd_disable"`
	OnGridAlwaysOn     string `json:"on_grid_always_on"`
}

func DecodeRegister179(data uint16) Register179Bits {
	direction := func(bit uint16) string {
		if data&bit == bit {
			return "Reversed"
		}
		return "Normal"
	}
	control := func(bit uint16) string {
		if data&bit == bit {
			return "Volt"
		}
		return "State of Charge"
	}
	smartLoad := func(bit uint16) string {
		if data&bit == bit {
			return "Smart Load"
		}
		return "Generator"
	}
	reversed := func(bit uint16) string {
		if data&bit == bit {
			return "OFF"
		}
		return "ON"
	}
	return Register179Bits{
		AcCtDirection:      direction(1 << 0),
		PvCtDirection:      direction(1 << 1),
		PvSellFirst:        onOff(data, 1<<3),
		VoltWattEn:         onOff(data, 1<<4),
		TriptimeUnit:       onOff(data, 1<<5),
		ActPowerCmdEn:      onOff(data, 1<<6),
		UbGridPeakShaving:  onOff(data, 1<<7),
		UbGenPeakShaving:   onOff(data, 1<<8),
		UbBatChargeControl: control(1 << 9),
		UbBatDischgControl: control(1 << 10),
		UbAcCoupling:       onOff(data, 1<<11),
		UbPvArcEn:          onOff(data, 1<<12),
		UbSmartLoadEn:      smartLoad(1 << 13),
		UbRsdDisable:       reversed(1 << 14),
		OnGridAlwaysOn:     onOff(data, 1<<15),
	}
}

// Register224Bits decodes LCDConfig.
type Register224Bits struct {
	LcdVersion         uint8  `json:"lcd_version"`
	LcdScreenType      string `json:"lcd_screen_type"`
	LcdOdm             string `json:"lcd_odm"`
	LcdMachineModelCode string `json:"lcd_machine_model_code"`
}

func DecodeRegister224(data uint16) Register224Bits {
	screenType := func(v uint16) string {
		switch v {
		case 0:
			return "Screen of B size"
		case 1:
			return "Screen of S size"
		default:
			return "Unknown"
		}
	}
	odm := func(v uint16) string {
		switch v {
		case 0:
			return "Luxpower"
		case 1:
			return "Customized"
		default:
			return "Unknown"
		}
	}
	model := func(v uint16) string {
		switch v {
		case 0:
			return "LXP 12K"
		case 1:
			return "All-in-one"
		case 2:
			return "Tri-Phase 20k"
		default:
			return "Unknown"
		}
	}
	return Register224Bits{
		LcdVersion:          uint8(data & 0xff),
		LcdScreenType:       screenType((data >> 8) & 1),
		LcdOdm:              odm((data >> 9) & 0b11),
		LcdMachineModelCode: model((data >> 11) & 0b11111),
	}
}

// Register230Bits decodes MeterConfig.
type Register230Bits struct {
	MetersNum         uint8  `json:"meters_num"`
	MeterMeasureType  string `json:"meter_measure_type"`
	InstallPhase      string `json:"install_phase"`
}

func DecodeRegister230(data uint16) Register230Bits {
	measureType := func(v uint16) string {
		switch v {
		case 0:
			return "Meter 1 measure AC, Meter 2 measure PV"
		case 1:
			return "Meter 1 measure PV, Meter 2 measure AC"
		default:
			return "Unknown"
		}
	}
	installPhase := func(v uint16) string {
		switch v {
		case 0:
			return "R phase"
		case 1:
			return "S phase"
		case 2:
			return "T phase"
		default:
			return "Unknown"
		}
	}
	return Register230Bits{
		MetersNum:        uint8(data & 0b1111),
		MeterMeasureType: measureType((data >> 8) & 1),
		InstallPhase:     installPhase((data >> 9) & 0b11),
	}
}

// Register233Bits decodes FunctionEnable4.
type Register233Bits struct {
	UbQuickChargeStartEn string `json:"ub_quick_charge_start_en"`
	UbBattBackupEn       string `json:"ub_batt_backup_en"`
	UbMaintenanceEn      string `json:"ub_maintenance_en"`
	UbWorkingMode        string `json:"ub_working_mode"`
}

func DecodeRegister233(data uint16) Register233Bits {
	workingMode := func(bit uint16) string {
		if data&bit == bit {
			return "Work mode 2"
		}
		return "Work mode 1"
	}
	return Register233Bits{
		UbQuickChargeStartEn: onOff(data, 1<<0),
		UbBattBackupEn:       onOff(data, 1<<1),
		UbMaintenanceEn:      onOff(data, 1<<2),
		UbWorkingMode:        workingMode(1 << 3),
	}
}

// Register235Bits decodes NoFullChargeDay.
type Register235Bits struct {
	NoFullChargeDays       uint8 `json:"no_full_charge_days"`
	NoFullChargeDaysNumSet uint8 `json:"no_full_charge_days_num_set"`
}

func DecodeRegister235(data uint16) Register235Bits {
	return Register235Bits{
		NoFullChargeDays:       uint8(data & 0xff),
		NoFullChargeDaysNumSet: uint8((data & 0xff00) >> 8),
	}
}

// Register71Bits decodes the auto-test result register.
type Register71Bits struct {
	AutoTestStart      string `json:"auto_test_start"`
	UbAutoTestStatus   string `json:"ub_auto_test_status"`
	UbAutoTestStep     string `json:"ub_auto_test_step"`
}

func DecodeRegister71(data uint16) Register71Bits {
	start := func(v uint16) string {
		switch v {
		case 0:
			return "Not Started"
		case 1:
			return "Started"
		default:
			return "Unknown"
		}
	}
	status := func(v uint16) string {
		switch v {
		case 0:
			return "Waiting"
		case 1:
			return "Testing"
		case 2:
			return "Test Fail"
		case 3:
			return "V Test OK"
		case 4:
			return "F Test OK"
		case 5:
			return "Test Pass"
		default:
			return "Unknown"
		}
	}
	step := func(v uint16) string {
		switch v {
		case 1:
			return "V1L Test"
		case 2:
			return "V1H Test"
		case 3:
			return "F1L Test"
		case 4:
			return "F1H Test"
		case 5:
			return "V2L Test"
		case 6:
			return "V2H Test"
		case 7:
			return "F2L Test"
		case 8:
			return "F2H Test"
		default:
			return "Unknown"
		}
	}
	return Register71Bits{
		AutoTestStart:    start((data >> 0) & 0b1111),
		UbAutoTestStatus: status((data >> 4) & 0b1111),
		UbAutoTestStep:   step((data >> 8) & 0b1111),
	}
}

// Register77Bits decodes the AC-couple status register.
type Register77Bits struct {
	AcInputType         string `json:"ac_input_type"`
	AcCoupleInverterFlow string `json:"ac_couple_inverter_flow"`
	AcCoupleEnable       string `json:"ac_couple_enable"`
}

func DecodeRegister77(data uint16) Register77Bits {
	inputType := func(v uint16) string {
		switch v {
		case 0:
			return "Grid"
		case 1:
			return "Generator"
		default:
			return "Unknown"
		}
	}
	return Register77Bits{
		AcInputType:          inputType((data >> 0) & 0b1),
		AcCoupleInverterFlow: onOff(data, 1<<1),
		AcCoupleEnable:       onOff(data, 1<<2),
	}
}

// HasBitDecoder reports whether reg is one of the ~12 packed registers with
// a dedicated bit decoder, and if so decodes it to a stable-ordered value
// suitable for JSON marshalling.
func HasBitDecoder(reg Register) (decode func(uint16) any, ok bool) {
	switch reg {
	case Register21:
		return func(v uint16) any { return DecodeRegister21(v) }, true
	case FunctionEnable1:
		return func(v uint16) any { return DecodeRegister110(v) }, true
	case SetComposedPhase:
		return func(v uint16) any { return DecodeRegister113(v) }, true
	case StSysEnable:
		return func(v uint16) any { return DecodeRegister120(v) }, true
	case FloatChargeVolt:
		return func(v uint16) any { return DecodeRegister144(v) }, true
	case FunctionEnable2:
		return func(v uint16) any { return DecodeRegister179(v) }, true
	case LCDConfig:
		return func(v uint16) any { return DecodeRegister224(v) }, true
	case MeterConfig:
		return func(v uint16) any { return DecodeRegister230(v) }, true
	case FunctionEnable4:
		return func(v uint16) any { return DecodeRegister233(v) }, true
	case NoFullChargeDay:
		return func(v uint16) any { return DecodeRegister235(v) }, true
	}
	return nil, false
}
