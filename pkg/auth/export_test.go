package auth

var PrincipalFromClaims = principalFromClaims
