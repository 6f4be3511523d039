package bank

// Wire shapes of the provider's PIX API.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

type cobCalendar struct {
	Expiration int64 `json:"expiracao"`
}

type cobValue struct {
	Original string `json:"original"`
}

type cobDebtor struct {
	Name string `json:"nome,omitempty"`
	CPF  string `json:"cpf,omitempty"`
}

type cobRequest struct {
	Calendar cobCalendar `json:"calendario"`
	Debtor   *cobDebtor  `json:"devedor,omitempty"`
	Value    cobValue    `json:"valor"`
	PixKey   string      `json:"chave"`
	Request  string      `json:"solicitacaoPagador,omitempty"`
}

type cobResponse struct {
	TxID     string      `json:"txid"`
	Status   string      `json:"status"`
	Location string      `json:"location"`
	Value    cobValue    `json:"valor"`
	Calendar cobCalendar `json:"calendario"`
}

type providerErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
