// Package registers implements the LuxPower register model: the closed
// enumeration of holding-register addresses, their engineering-unit scale
// factors, the packed-bit decoders for the handful of registers that pack
// several boolean/enum fields into one u16, and the status/fault/warning
// code label tables.
package registers

// Register is a holding-register address drawn from a closed enumeration.
type Register uint16

const (
	FwCodeLo               Register = 7
	FwCodeHi               Register = 8
	Version1               Register = 9
	Version2               Register = 10
	ResetSetting           Register = 11
	InverterTime1          Register = 12
	InverterTime2          Register = 13
	InverterTime3          Register = 14
	ComAddress             Register = 15
	Language               Register = 16
	DeviceType             Register = 19
	PvInputModel           Register = 20
	Register21             Register = 21
	StartPvVolt            Register = 22
	ConnectTime            Register = 23
	ReconnectTime          Register = 24
	GridVoltConnLow        Register = 25
	GridVoltConnHigh       Register = 26
	GridFreqConnLow        Register = 27
	GridFreqConnHigh       Register = 28
	GridVoltLimit1Low      Register = 29
	GridVoltLimit1High     Register = 30
	GridVoltLimit1LowTime  Register = 31
	GridVoltLimit1HighTime Register = 32
	GridVoltLimit2Low      Register = 33
	GridVoltLimit2High     Register = 34
	GridVoltLimit2LowTime  Register = 35
	GridVoltLimit2HighTime Register = 36
	GridVoltLimit3Low      Register = 37
	GridVoltLimit3High     Register = 38
	GridVoltLimit3LowTime  Register = 39
	GridVoltLimit3HighTime Register = 40
	GridVoltMovAvgHigh     Register = 41
	GridFreqLimit1Low      Register = 42
	GridFreqLimit1High     Register = 43
	GridFreqLimit1LowTime  Register = 44
	GridFreqLimit1HighTime Register = 45
	GridFreqLimit2Low      Register = 46
	GridFreqLimit2High     Register = 47
	GridFreqLimit2LowTime  Register = 48
	GridFreqLimit2HighTime Register = 49
	GridFreqLimit3Low      Register = 50
	GridFreqLimit3High     Register = 51
	GridFreqLimit3LowTime  Register = 52
	GridFreqLimit3HighTime Register = 53
	MaxQPercentForQV       Register = 54
	V1L                    Register = 55
	V2L                    Register = 56
	V1H                    Register = 57
	V2H                    Register = 58
	ReactivePowerCmdType   Register = 59
	ActivePowerPercentCmd  Register = 60
	ReactivePowerPercentCmd Register = 61
	PfCmd                   Register = 62
	PowerSoftStartSlope     Register = 63
	ChargePowerPercentCmd   Register = 64
	DischgPowerPercentCmd   Register = 65
	AcChargePowerCmd        Register = 66
	AcChargeSocLimit        Register = 67
	ChargePriorityPowerCmd  Register = 74
	ChargePrioritySocLimit  Register = 75
	ForcedDischgPowerCmd    Register = 82
	ForcedDischgSocLimit    Register = 83
	EpsVoltageSet           Register = 90
	EpsFrequencySet         Register = 91
	LockInGridVForPFCurve   Register = 92
	LockOutGridVForPFCurve  Register = 93
	LockInPowerForQVCurve   Register = 94
	LockOutPowerForQVCurve  Register = 95
	DelayTimeForQVCurve     Register = 96
	DelayTimeForOverFCurve  Register = 97
	ChargeVoltRef           Register = 99
	CutVoltForDischg        Register = 100
	ChargeCurr              Register = 101
	DischgCurr              Register = 102
	MaxBackFlow             Register = 103
	DischgCutOffSocEod      Register = 105
	TemprLowerLimitDischg   Register = 106
	TemprUpperLimitDischg   Register = 107
	TemprLowerLimitChg      Register = 108
	TemprUpperLimitChg      Register = 109
	FunctionEnable1         Register = 110
	SetSystemType           Register = 112
	SetComposedPhase        Register = 113
	ClearFunction           Register = 114
	OVFDerateStartPoint     Register = 115
	PtoUserStartDischg      Register = 116
	PtoUserStartCharge      Register = 117
	VbatStartDerating       Register = 118
	WCTPowerOffset          Register = 119
	StSysEnable             Register = 120
	OVFDerateEndPoint       Register = 124
	EpsDischgCutoffSocEod   Register = 125
	OptimalChgDischg1       Register = 126
	OptimalChgDischg2       Register = 127
	OptimalChgDischg3       Register = 128
	OptimalChgDischg4       Register = 129
	OptimalChgDischg5       Register = 130
	OptimalChgDischg6       Register = 131
	BatCellVoltageLimit     Register = 132
	BatCellConfig           Register = 133
	UVFDerateStartPoint     Register = 134
	UVFDerateEndPoint       Register = 135
	OVFDerateRatio          Register = 136
	SpecLoadCompensate      Register = 137
	ChargePowerPercentCmd2  Register = 138
	DischgPowerPercentCmd2  Register = 139
	AcChargePowerCmd2       Register = 140
	ChargePriorityPowerCmd2 Register = 141
	ForcedDischgPowerCmd2   Register = 142
	ActivePowerPercentCmd2  Register = 143
	FloatChargeVolt         Register = 144
	OutputPrioConfig        Register = 145
	LineMode                Register = 146
	BatteryCapacity         Register = 147
	BatteryNominalVolt      Register = 148
	EqualizationVolt        Register = 149
	EqualizationInterval    Register = 150
	EqualizationTime        Register = 151
	AcChargeStartVolt       Register = 158
	AcChargeEndVolt         Register = 159
	AcChargeStartSocLimit   Register = 160
	AcChargeEndSocLimit     Register = 161
	BatLowVoltage           Register = 162
	BatLowBackVoltage       Register = 163
	BatLowSoc               Register = 164
	BatLowBackSoc           Register = 165
	BatLowToUtilityVoltage  Register = 166
	BatLowtoUtilitySoc      Register = 167
	AcChargeBatCurrent      Register = 168
	OnGridEndDischrgVoltage Register = 169
	SocCurveBatVolt1        Register = 171
	SocCurveBatVolt2        Register = 172
	SocCurveSoc1            Register = 173
	SocCurveSoc2            Register = 174
	SocCurveInnerResistance Register = 175
	MaxGridInputPower       Register = 176
	GenRatePower            Register = 177
	FunctionEnable2         Register = 179
	AFCIArcThreshold        Register = 180
	VoltWattV1              Register = 181
	VoltWattV2              Register = 182
	VoltWattDelayTime       Register = 183
	VoltWattP2              Register = 184
	VrefQV                  Register = 185
	VrefFilterTime          Register = 186
	Q3Qv                    Register = 187
	Q4Qv                    Register = 188
	P1Qp                    Register = 189
	P2Qp                    Register = 190
	P3Qp                    Register = 191
	P4Qp                    Register = 192
	UVFIncreaseRatio        Register = 193
	GenChargeStartVolt      Register = 194
	GenChargeEndVolt        Register = 195
	GenChargeStartSoc       Register = 196
	GenChargeEndSoc         Register = 197
	MaxGenChargeBatCurr     Register = 198
	OverTempDeratePoint     Register = 199
	ChargePriorityEndVolt   Register = 201
	ForceDichgEndVolt       Register = 202
	GridRegulation          Register = 203
	LeadCapacity            Register = 204
	GridType                Register = 205
	GridPeakShavingPower    Register = 206
	GridPeakShavingSoc      Register = 207
	GridPeakShavingVolt     Register = 208
	SmartLoadOnVolt         Register = 213
	SmartLoadOffVolt        Register = 214
	SmartLoadOnSoc          Register = 215
	SmartLoadOffSoc         Register = 216
	StartPVpower            Register = 217
	GridPeakShavingSoc1     Register = 218
	GridPeakShavingVolt1    Register = 219
	ACCoupleStartSoc        Register = 220
	ACCoupleEndSoc          Register = 221
	ACCoupleStartVolt       Register = 222
	ACCoupleEndVolt         Register = 223
	LCDConfig               Register = 224
	LCDPassword             Register = 225
	BatStopChargeSoc        Register = 227
	BatStopChargeVolt       Register = 228
	MeterConfig             Register = 230
	ResetRecord             Register = 231
	GridPeakShavingPower1   Register = 232
	FunctionEnable4         Register = 233
	QuickChargeTime         Register = 234
	NoFullChargeDay         Register = 235
	FloatChargeThreshold    Register = 236
	GenCoolDownTime         Register = 237
	AllowService            Register = 241
)

// Config carries the engineering-unit scale and unit label for a register
// that has one; registers absent from the table use the zero Config,
// normalised by Lookup to scale=1.0/unit="".
type Config struct {
	Scale float64
	Unit  string
}

var configTable = map[Register]Config{
	GenRatePower:        {Scale: 0.1, Unit: "kW"},
	MaxGenChargeBatCurr: {Scale: 1.0, Unit: "A"},
	GenCoolDownTime:     {Scale: 0.1, Unit: "min"},
}

// Lookup returns the RegisterConfig for reg, defaulting to scale=1.0,
// unit="" when the register has no explicit entry.
func Lookup(reg Register) Config {
	if c, ok := configTable[reg]; ok {
		return c
	}
	return Config{Scale: 1.0, Unit: ""}
}
