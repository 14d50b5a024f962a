// Package vslib is a project-based pitch and dynamics editor for recorded
// voice.
//
// A [Project] owns items. Adding a wave file as an item analyzes it into
// control points, one every 1/CtrlPntPs seconds, each carrying the detected
// pitch and level alongside editable copies of them. Editing control points
// and exporting the project renders the items with the edits applied:
//
//	p := vslib.New()
//	defer p.Close()
//
//	item, err := p.AddItem("take.wav")
//	...
//	info, err := p.ItemInfo(item)
//	for i := range info.CtrlPntNum {
//		cp, _ := p.CtrlPnt(item, i)
//		cp.PitEdit += 100
//		_ = p.SetCtrlPnt(item, i, cp)
//	}
//	err = p.ExportWaveFile(ctx, "out.wav", 16, 2)
//
// Pitches are absolute cents with 6900 at 440 Hz (see [Freq2Cent]).
// Projects persist to a CBOR project file with [Project.Save] and [Open];
// the file references wave files by path and stores no samples.
package vslib
