package devices

import "github.com/joshwearssocks/midnite-conext-monitor/internal/modbus"

// BinaryState is the Conext enable/disable register value set. It backs
// several writable configuration registers (grid support, sell, charger).
var BinaryState = &modbus.Enum{
	Name: "BinaryState",
	Values: []modbus.EnumValue{
		{Value: 0, Label: "Disable"},
		{Value: 1, Label: "Enable"},
	},
}

// OperatingState is the Conext device operating mode.
var OperatingState = &modbus.Enum{
	Name: "OperatingState",
	Values: []modbus.EnumValue{
		{Value: 0, Label: "Hibernate"},
		{Value: 1, Label: "Power_Save"},
		{Value: 2, Label: "Safe_Mode"},
		{Value: 3, Label: "Operating"},
		{Value: 4, Label: "Diagnostic_Mode"},
		{Value: 5, Label: "Remote_Power_Off"},
		{Value: 255, Label: "Data_Not_Available"},
	},
}

// InverterStatus is the Conext inverter stage register.
var InverterStatus = &modbus.Enum{
	Name: "InverterStatus",
	Values: []modbus.EnumValue{
		{Value: 1024, Label: "Invert"},
		{Value: 1025, Label: "AC_Pass_Through"},
		{Value: 1026, Label: "APS_Only"},
		{Value: 1027, Label: "Load_Sense"},
		{Value: 1028, Label: "Inverter_Disabled"},
		{Value: 1029, Label: "Load_Sense_Ready"},
		{Value: 1030, Label: "Engaging_Inverter"},
		{Value: 1031, Label: "Invert_Fault"},
		{Value: 1032, Label: "Inverter_Standby"},
		{Value: 1033, Label: "Grid_Tied"},
		{Value: 1034, Label: "Grid_Support"},
		{Value: 1035, Label: "Gen_Support"},
		{Value: 1036, Label: "Sell_To_Grid"},
		{Value: 1037, Label: "Load_Shaving"},
		{Value: 1038, Label: "Grid_Frequency_Stabilization"},
	},
}

// ChargerStatus is the Conext charger stage register.
var ChargerStatus = &modbus.Enum{
	Name: "ChargerStatus",
	Values: []modbus.EnumValue{
		{Value: 768, Label: "Not_Charging"},
		{Value: 769, Label: "Bulk"},
		{Value: 770, Label: "Absorption"},
		{Value: 771, Label: "Overcharge"},
		{Value: 772, Label: "Equalize"},
		{Value: 773, Label: "Float"},
		{Value: 774, Label: "No_Float"},
		{Value: 775, Label: "Constant_VI"},
		{Value: 776, Label: "Charger_Disabled"},
		{Value: 777, Label: "Qualifying_AC"},
		{Value: 778, Label: "Qualifying_APS"},
		{Value: 779, Label: "Engaging_Charger"},
		{Value: 780, Label: "Charge_Fault"},
		{Value: 781, Label: "Charger_Suspend"},
		{Value: 782, Label: "AC_Good"},
		{Value: 783, Label: "APS_Good"},
		{Value: 784, Label: "AC_Fault"},
		{Value: 785, Label: "Charge"},
		{Value: 786, Label: "Absorption_Exit_Pending"},
		{Value: 787, Label: "Ground_Fault"},
		{Value: 788, Label: "AC_Good_Pending"},
	},
}

// ConextXW returns the register profile for the Schneider Conext XW6848
// inverter/charger, reached through its Modbus gateway.
//
// The setpoint registers the controller writes (grid_support,
// grid_support_voltage, maximum_sell_amps) carry the Verify policy so a
// rejected write surfaces as ErrVerifyMismatch instead of silently holding
// the old setpoint.
func ConextXW() modbus.Profile {
	return modbus.Profile{
		Model: ProfileConextXW,
		Fields: []modbus.Field{
			// General information
			{Name: "device_name", Descriptor: modbus.Descriptor{
				Address: 0x0000, Type: modbus.TypeText, Words: 8,
			}},
			{Name: "device_state", Descriptor: modbus.Descriptor{
				Address: 0x0040, Type: modbus.TypeEnum, Words: 1, Enum: OperatingState,
			}},
			{Name: "inverter_status", Descriptor: modbus.Descriptor{
				Address: 0x007A, Type: modbus.TypeEnum, Words: 1, Enum: InverterStatus,
			}},
			{Name: "charger_status", Descriptor: modbus.Descriptor{
				Address: 0x007B, Type: modbus.TypeEnum, Words: 1, Enum: ChargerStatus,
			}},
			// Grid support configuration
			{Name: "grid_support", Descriptor: modbus.Descriptor{
				Address: 0x01B3, Type: modbus.TypeEnum, Words: 1, Enum: BinaryState, Verify: true,
			}},
			{Name: "grid_support_voltage", Descriptor: modbus.Descriptor{
				Address: 0x0178, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "V", Verify: true,
			}},
			{Name: "sell", Descriptor: modbus.Descriptor{
				Address: 0x0162, Type: modbus.TypeEnum, Words: 1, Enum: BinaryState,
			}},
			{Name: "maximum_sell_amps", Descriptor: modbus.Descriptor{
				Address: 0x01B4, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "A", Verify: true,
			}},
			{Name: "grid_tie_sell_level", Descriptor: modbus.Descriptor{
				Address: 0x00BF, Type: modbus.TypeUint16, Words: 1, Scale: 1,
			}},
			{Name: "sell_block_start", Descriptor: modbus.Descriptor{
				Address: 0x01F7, Type: modbus.TypeUint16, Words: 1, Scale: 1, Unit: "min",
			}},
			{Name: "sell_block_end", Descriptor: modbus.Descriptor{
				Address: 0x01F8, Type: modbus.TypeUint16, Words: 1, Scale: 1, Unit: "min",
			}},
			// Battery configuration
			{Name: "charger", Descriptor: modbus.Descriptor{
				Address: 0x0164, Type: modbus.TypeEnum, Words: 1, Enum: BinaryState,
			}},
			// equalize_now is a transient command: it reads back Disable
			// once the cycle starts, so verification stays off.
			{Name: "equalize_now", Descriptor: modbus.Descriptor{
				Address: 0x0170, Type: modbus.TypeEnum, Words: 1, Enum: BinaryState,
			}},
			{Name: "recharge_voltage", Descriptor: modbus.Descriptor{
				Address: 0x017A, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "V",
			}},
			// Advanced
			{Name: "power_save", Descriptor: modbus.Descriptor{
				Address: 0x016C, Type: modbus.TypeEnum, Words: 1, Enum: BinaryState,
			}},
			// Power
			{Name: "invert_dc_power", Descriptor: modbus.Descriptor{
				Address: 0x005A, Type: modbus.TypeUint32, Words: 2, Scale: 1, Unit: "W",
			}},
			{Name: "grid_output_power", Descriptor: modbus.Descriptor{
				Address: 0x0084, Type: modbus.TypeUint32, Words: 2, Scale: 1, Unit: "W",
			}},
			{Name: "load_ac_power", Descriptor: modbus.Descriptor{
				Address: 0x009A, Type: modbus.TypeInt32, Words: 2, Scale: 1, Unit: "W",
			}},
			// Energy
			{Name: "energy_from_battery_today", Descriptor: modbus.Descriptor{
				Address: 0x00EC, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "kWh",
			}},
			{Name: "grid_input_energy_today", Descriptor: modbus.Descriptor{
				Address: 0x0104, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "kWh",
			}},
			{Name: "grid_output_energy_today", Descriptor: modbus.Descriptor{
				Address: 0x011C, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "kWh",
			}},
			{Name: "load_output_energy_today", Descriptor: modbus.Descriptor{
				Address: 0x0134, Type: modbus.TypeUint32, Words: 2, Scale: 0.001, Unit: "kWh",
			}},
		},
	}
}
