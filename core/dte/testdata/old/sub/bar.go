package sub

// SubFunc lives in a subpackage.
func SubFunc() {}
