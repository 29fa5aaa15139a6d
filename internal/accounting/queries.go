package accounting

const paymentInvoicesQuery = `
SELECT M.CO_NUMERO,
       CASE WHEN PR.RF_CODIGO = 0 AND PR.RF_CODIGO2 = 0 THEN NULL ELSE MAX(P.PM_NROSEC) END AS PM_NROSEC,
       MAX(C.CO_FACPRO) AS CO_FACPRO,
       MAX(PR.PV_RUCCI) AS PV_RUCCI,
       MAX(PR.PV_RAZONS) AS PV_RAZONS,
       MAX(PR.RF_CODIGO) AS RF_CODIGO,
       MAX(PR.RF_CODIGO2) AS RF_CODIGO2
  FROM CP_MOVIM M, CP_PAGO P, IN_COMPRA C, IN_PROVE PR
 WHERE M.MP_CODIGO = P.MP_CODIGO
   AND M.CO_NUMERO = C.CO_NUMERO
   AND C.PV_CODIGO = PR.PV_CODIGO
   AND M.CO_NUMERO IS NOT NULL
 GROUP BY M.CO_NUMERO, PR.RF_CODIGO, PR.RF_CODIGO2
 ORDER BY M.CO_NUMERO DESC`

const suppliersQuery = `SELECT PV_RUCCI, PV_RAZONS FROM IN_PROVE ORDER BY PV_RAZONS ASC`

// retentionDetailQuery joins the purchase header with its product lines and
// the withholding sequence of its payment. Column aliases match
// retentionRecord.
const retentionDetailQuery = `
SELECT C.CO_NUMERO,
       MAX(P.PM_NROSEC) AS PM_NROSEC,
       C.CL_CODIGO,
       D.IT_CODIGO,
       C.CO_SUBTOT AS SUBTOTAL,
       C.CO_IVA AS IVA,
       C.CO_BASE15 AS BASE15,
       C.CO_TOTAL AS TOTAL,
       I.IT_CODPRO AS CODIGO_PRODUCTO,
       I.IT_NOMBRE AS PRODUCTO,
       D.DC_CANTID AS CANTIDAD,
       D.DC_COSTO AS COSTO_UNITARIO,
       D.DC_SUBTOT AS SUBTOTAL_LINEA
  FROM IN_COMPRA C
  JOIN IN_DCOMPRA D ON D.CO_NUMERO = C.CO_NUMERO
  LEFT JOIN IN_ITEM I ON I.IT_CODIGO = D.IT_CODIGO
  LEFT JOIN CP_MOVIM M ON M.CO_NUMERO = C.CO_NUMERO
  LEFT JOIN CP_PAGO P ON P.MP_CODIGO = M.MP_CODIGO
 WHERE C.CO_NUMERO = :1
 GROUP BY C.CO_NUMERO, C.CL_CODIGO, D.IT_CODIGO, C.CO_SUBTOT, C.CO_IVA, C.CO_BASE15, C.CO_TOTAL,
          I.IT_CODPRO, I.IT_NOMBRE, D.DC_CANTID, D.DC_COSTO, D.DC_SUBTOT
 ORDER BY D.IT_CODIGO`
