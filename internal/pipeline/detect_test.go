package pipeline

import "testing"

func TestDetectCollectionDocumentPositive(t *testing.T) {
	res := DetectCollectionDocument(
		"Coleta de equipamentos",
		"Endereço: Rua das Flores, 120, 13010-200\nDescrição Quant. Inst.\n1 Modem 2",
		"", nil)
	if !res.IsCollection {
		t.Fatalf("score=%f reason=%s", res.Score, res.Reason)
	}
}

func TestDetectCollectionDocumentNegative(t *testing.T) {
	res := DetectCollectionDocument(
		"Promoção imperdível",
		"compre agora e ganhe desconto em todo o site",
		"", nil)
	if res.IsCollection {
		t.Fatalf("score=%f", res.Score)
	}
}

func TestDetectCollectionDocumentAttachmentBump(t *testing.T) {
	without := DetectCollectionDocument("Retirada", "", "", nil)
	if without.IsCollection {
		t.Fatalf("score=%f", without.Score)
	}
	with := DetectCollectionDocument("Retirada", "", "", []string{"autorizacao.pdf"})
	if !with.IsCollection {
		t.Fatalf("score=%f", with.Score)
	}
}
