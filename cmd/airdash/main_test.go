package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/airdash/internal/dataset"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	const header = "No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station\n"
	files := map[string]string{
		"a.csv": header +
			"1,2013,3,1,0,1,4,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Aotizhongxin\n" +
			"2,2013,3,1,1,2,4,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Aotizhongxin\n" +
			"3,2013,3,1,2,3,4,4,7,NA,77,-0.7,1023,-18.8,0,NNW,4.4,Aotizhongxin\n",
		"b.csv": header +
			"1,2013,3,1,0,9,9,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Dingling\n",
	}
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestStationsCmd(t *testing.T) {
	out := captureStdout(t)
	cli := &CLI{DataDir: writeDataDir(t)}

	if err := (&StationsCmd{}).Run(cli); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), out)
	}
	if f := strings.Fields(lines[1]); len(f) != 4 || f[0] != "0" || f[1] != "Aotizhongxin" || f[2] != "3" || f[3] != "a.csv" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if f := strings.Fields(lines[2]); len(f) != 4 || f[0] != "1" || f[1] != "Dingling" {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestDescribeCmd(t *testing.T) {
	out := captureStdout(t)
	cli := &CLI{DataDir: writeDataDir(t)}

	cmd := &DescribeCmd{Station: "Aotizhongxin", Columns: []string{"PM2.5", "CO"}}
	if err := cmd.Run(cli); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), out)
	}

	// PM2.5 is 1, 2, 3.
	want := []string{"PM2.5", "3", "2.0000", "1.0000", "1.0000", "1.5000", "2.0000", "2.5000", "3.0000"}
	if got := strings.Fields(lines[1]); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("PM2.5 row = %v, want %v", got, want)
	}
	// CO has two equal values, so std is zero rather than undefined.
	if f := strings.Fields(lines[2]); f[0] != "CO" || f[1] != "2" || f[3] != "0.0000" {
		t.Errorf("CO row = %v", f)
	}
}

func TestDescribeCmd_UnknownStation(t *testing.T) {
	captureStdout(t)
	cli := &CLI{DataDir: writeDataDir(t)}

	err := (&DescribeCmd{Station: "Nowhere"}).Run(cli)
	var unknown *dataset.UnknownStationError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownStationError", err)
	}
}

func TestNum(t *testing.T) {
	v := 82.77361
	if got := num(&v); got != "82.7736" {
		t.Errorf("num(82.77361) = %q", got)
	}
	if got := num(nil); got != "NaN" {
		t.Errorf("num(nil) = %q, want NaN", got)
	}
}
