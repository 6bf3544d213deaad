package labeler

import "fmt"

// Categories is the fixed circuit-type vocabulary the backend chooses from.
var Categories = []string{
	"Encryption Units",
	"Data Path Units",
	"Control Logic Units",
	"Arithmetic Units",
	"Communication Protocol Units",
	"Signal Processing Units",
	"Clock Management Units",
	"Other Units",
}

// categorySystemPrompt is the fixed system prompt for circuit-type
// prediction; promptType is "instruction" or "description".
func categorySystemPrompt(promptType string) string {
	return fmt.Sprintf(`
You are a professional VLSI digital design engineer. Categorize the following RTL (Register Transfer Level) design %[1]ss and Verilog code pairs into one of the functional categories below. The response should only contain the most relevant function category:

Functional Categories:
1. Encryption Units: Modules that handle encryption or cryptographic functions.
2. Data Path Units: Modules involved in data movement, selection, or manipulation (e.g., multiplexers, shifters).
3. Control Logic Units: Modules responsible for control flow or decision-making in systems (e.g., state machines).
4. Arithmetic Units: Modules performing arithmetic operations (e.g., adders, subtractors).
5. Communication Protocol Units: Modules implementing communication protocols (e.g., UART, SPI).
6. Signal Processing Units: Modules used for signal transformation or filtering.
7. Clock Management Units: Modules managing clock signals and synchronization.
8. Other Units: Modules not fitting the above categories.

Please reply with only the functional category name.

Examples:
1.
%[1]s: "This module is a 4-bit adder with carry-in and carry-out. The module has two 4-bit inputs, a single carry-in input, and a single carry-out output. The output is the sum of the two inputs plus the carry-in."
Verilog: "module adder (\n    input [3:0] a,\n    input [3:0] b,\n    input cin,\n    output cout,\n    output [3:0] sum\n);\n\n    assign {cout, sum} = a + b + cin;\n\nendmodule"
Response: "Arithmetic Units"
2.
%[1]s: "This module is a 2-to-1 multiplexer designed using Verilog. The module has two input ports and one output port. The output is the value of the first input port if the select input is 0, and the value of the second input port if the select input is 1. The design is implemented using only NAND gates."
Verilog: "module mux_2to1 (\n    input a,\n    input b,\n    input select,\n    output reg out\n);\n\n  wire nand1, nand2, nand3, nand4;\n\n  assign nand1 = ~(a & select);\n  assign nand2 = ~(b & ~select);\n  assign nand3 = ~(nand1 & nand2);\n  assign nand4 = ~(nand3 & nand3);\n\n  always @ (nand4) begin\n    out <= ~nand4;\n  end\n\nendmodule"
Response: "Data Path Units"

Now categorize the following RTL %[1]s and Verilog code pair:
`, promptType)
}

// categoryUserPrompt pairs the design prompt and code for one request.
func categoryUserPrompt(promptType, prompt, verilog string) string {
	return fmt.Sprintf("%s: %q\nVerilog: %q", promptType, prompt, verilog)
}

// inst2descPrompt asks for a tone change only, no detail changes.
const inst2descPrompt = `Given a design instruction, change it into a tone of description. Do not change or add any details.

Here are two examples.

Instruction: Design a module that can detect any edge in an 8-bit binary vector and output the binary value of the vector one cycle after the edge is detected. The module should have two input ports: a clock input and an 8-bit binary input port. The output port should be an 8-bit binary vector that represents the input value one cycle after the edge is detected. The module must be designed using a counter and a comparator.
Example description: This module is designed to detect any edge in an 8-bit binary vector and output the binary value of the vector one cycle after the edge is detected. The module has two input ports: a clock input (` + "`clk`" + `) and an 8-bit binary input port (` + "`in`" + `). The output port (` + "`out`" + `) is an 8-bit binary vector that represents the input value one cycle after the edge is detected. The design uses a counter and a comparator to achieve this functionality.

Instruction: Please act as a professional Verilog designer. Design a pipelined module that implements a 4-to-2 priority encoder. The module should have four 1-bit inputs (I0, I1, I2, I3) and two 2-bit outputs (O0, O1). The output should be the binary encoding of the highest-priority input that is asserted. If multiple inputs are asserted, the output should correspond to the input with the highest index number (i.e., the last asserted input in the list). Use pipeline structure to achieve this functionality.
Example description: This design is a pipelined 4-to-2 priority encoder module. The module has four 1-bit inputs (` + "`I0`, `I1`, `I2`, `I3`" + `) and two 2-bit outputs (` + "`O0`, `O1`" + `). The output is the binary encoding of the highest-priority input that is asserted. If multiple inputs are asserted, the output corresponds to the input with the highest index number. The design uses a pipeline structure to implement this functionality.

Now, please change this instruction directly (do not include any pre-fix like 'here is a rewritten description'): `
