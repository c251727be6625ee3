package classifications

var Missing = missing
