package vslib_test

import (
	"fmt"

	"github.com/cwbudde/algo-vshift/vslib"
)

func ExampleFreq2Cent() {
	fmt.Println(vslib.Freq2Cent(440), vslib.Freq2Cent(880), vslib.Freq2Cent(0))
	// Output: 6900 8100 0
}

func ExampleProject_SetCtrlPnt() {
	p := vslib.New()
	defer p.Close()

	silence := make([]float64, 8000)
	n, err := p.AddItemSamples("silence", 16000, [][]float64{silence})
	if err != nil {
		fmt.Println(err)
		return
	}

	info, _ := p.ItemInfo(n)
	fmt.Println("control points:", info.CtrlPntNum)

	cp, _ := p.CtrlPnt(n, 0)
	cp.Volume = 5
	fmt.Println(p.SetCtrlPnt(n, 0, cp))
	// Output:
	// control points: 50
	// vslib: SetCtrlPnt: invalid parameter: volume must be in [0, 4]: 5
}
