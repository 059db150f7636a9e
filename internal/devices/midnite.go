package devices

import "github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"

// ComboChargeStage is the Midnite Classic combined charge stage register.
//
// The device packs the stage into the upper byte of the register with
// auxiliary flags below it, so lookups fall back to value >> 8 when the
// full word has no member.
var ComboChargeStage = &modbus.Enum{
	Name:              "ComboChargeStage",
	UpperByteFallback: true,
	Values: []modbus.EnumValue{
		{Value: 0, Label: "Resting"},
		{Value: 3, Label: "Absorb"},
		{Value: 4, Label: "BulkMppt"},
		{Value: 5, Label: "Float"},
		{Value: 6, Label: "FloatMppt"},
		{Value: 7, Label: "Equalize"},
		{Value: 8, Label: "HyperVoc"},
		{Value: 18, Label: "EqMppt"},
	},
}

// MidniteClassic returns the register profile for the Midnite Classic
// charge controller. Addresses and scales follow the vendor register map.
func MidniteClassic() modbus.Profile {
	return modbus.Profile{
		Model: ProfileMidniteClassic,
		Fields: []modbus.Field{
			// Battery
			{Name: "battery_soc", Descriptor: modbus.Descriptor{
				Address: 4372, Type: modbus.TypeUint16, Words: 1, Scale: 1, Unit: "%",
			}},
			{Name: "battery_ah_remaining", Descriptor: modbus.Descriptor{
				Address: 4376, Type: modbus.TypeUint16, Words: 1, Scale: 1, Unit: "AH",
			}},
			{Name: "combo_charge_stage", Descriptor: modbus.Descriptor{
				Address: 4119, Type: modbus.TypeEnum, Words: 1, Enum: ComboChargeStage,
			}},
			// Temperatures
			{Name: "t_batt", Descriptor: modbus.Descriptor{
				Address: 4131, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "C",
			}},
			{Name: "t_fet", Descriptor: modbus.Descriptor{
				Address: 4132, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "C",
			}},
			// Power
			{Name: "v_batt", Descriptor: modbus.Descriptor{
				Address: 4114, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "V",
			}},
			{Name: "i_batt", Descriptor: modbus.Descriptor{
				Address: 4116, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "A",
			}},
			{Name: "v_pv", Descriptor: modbus.Descriptor{
				Address: 4115, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "V",
			}},
			{Name: "i_pv", Descriptor: modbus.Descriptor{
				Address: 4120, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "A",
			}},
			{Name: "watts", Descriptor: modbus.Descriptor{
				Address: 4118, Type: modbus.TypeUint16, Words: 1, Scale: 1, Unit: "W",
			}},
			// Energy
			{Name: "kwh_today", Descriptor: modbus.Descriptor{
				Address: 4117, Type: modbus.TypeUint16, Words: 1, Scale: 0.1, Unit: "kWh",
			}},
			// The lifetime counter spans registers 4125-4126 least
			// significant word first.
			{Name: "kwh_lifetime", Descriptor: modbus.Descriptor{
				Address: 4125, Type: modbus.TypeUint32, Words: 2,
				Order: modbus.LowWordFirst, Scale: 0.1, Unit: "kWh",
			}},
		},
	}
}
