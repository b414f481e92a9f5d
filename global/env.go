package global

import (
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Realtime Text Editor Service"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}
