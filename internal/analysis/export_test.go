package analysis

var ScanSetting = scanSetting
